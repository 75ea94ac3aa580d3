package test

import (
	"context"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/chat"
)

func (s *IntegrationTestSuite) TestChatRelay() {
	ctx := context.Background()
	t := s.T()

	registered := registerUser(ctx, t, "chatter", "chatter@fitbot.test")
	token := registered.Token

	var result chat.RelayResult
	code := doAuthedRequest(ctx, t, token, "POST", "/chat/relay", chat.RelayRequest{
		Message:      "how do I squat properly?",
		Category:     "muscle-gain",
		IsNewSession: true,
	}, &result)
	s.Equal(200, code)
	s.Equal(testCompletionReply, result.Reply)
	s.NotEmpty(result.SessionID)
	// the canned reply mentions squats and a warm up
	s.NotEmpty(result.SuggestedVideos)

	// follow-up in the same session
	code = doAuthedRequest(ctx, t, token, "POST", "/chat/relay", chat.RelayRequest{
		Message:   "and how many reps?",
		Category:  "muscle-gain",
		SessionID: result.SessionID,
	}, &result)
	s.Equal(200, code)

	var messages []chat.Message
	code = doAuthedRequest(ctx, t, token, "GET", "/chat/sessions/"+result.SessionID, nil, &messages)
	s.Equal(200, code)
	s.Len(messages, 4)
	s.Equal("user", messages[0].Role)
	s.Equal("assistant", messages[1].Role)
}
