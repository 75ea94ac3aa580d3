package test

import (
	"context"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/challenges"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/gamification"
)

func (s *IntegrationTestSuite) TestChallengeFlow() {
	ctx := context.Background()
	t := s.T()

	registered := registerUser(ctx, t, "challenger", "challenger@fitbot.test")
	token := registered.Token

	var active []challenges.Challenge
	code := doAuthedRequest(ctx, t, token, "GET", "/challenges", nil, &active)
	s.Equal(200, code)
	s.Require().NotEmpty(active)

	pushUpMarch := active[0]
	s.Equal("Push-Up March", pushUpMarch.Title)
	joinPath := "/challenges/1/join"

	code = doAuthedRequest(ctx, t, token, "POST", joinPath, nil, nil)
	s.Equal(200, code)

	// joining twice is a conflict
	code = doAuthedRequest(ctx, t, token, "POST", joinPath, nil, nil)
	s.Equal(409, code)

	var membership challenges.Membership
	code = doAuthedRequest(ctx, t, token, "POST", "/challenges/1/progress",
		map[string]int{"amount": 40}, &membership)
	s.Equal(200, code)
	s.Equal(40, membership.Progress)
	s.False(membership.Completed)

	// crossing the goal completes the challenge and pays out once
	code = doAuthedRequest(ctx, t, token, "POST", "/challenges/1/progress",
		map[string]int{"amount": 70}, &membership)
	s.Equal(200, code)
	s.Equal(110, membership.Progress)
	s.True(membership.Completed)

	var stats gamification.UserStats
	code = doAuthedRequest(ctx, t, token, "GET", "/gamification/stats", nil, &stats)
	s.Equal(200, code)
	s.Equal(250, stats.XP)
	s.Equal(1, stats.Level)

	var mine []challenges.Membership
	code = doAuthedRequest(ctx, t, token, "GET", "/challenges/mine", nil, &mine)
	s.Equal(200, code)
	s.Len(mine, 1)
}

func (s *IntegrationTestSuite) TestChallengeLeave() {
	ctx := context.Background()
	t := s.T()

	registered := registerUser(ctx, t, "quitter", "quitter@fitbot.test")
	token := registered.Token

	// leaving before joining fails
	code := doAuthedRequest(ctx, t, token, "POST", "/challenges/1/leave", nil, nil)
	s.Equal(404, code)

	code = doAuthedRequest(ctx, t, token, "POST", "/challenges/1/join", nil, nil)
	s.Equal(200, code)

	code = doAuthedRequest(ctx, t, token, "POST", "/challenges/1/leave", nil, nil)
	s.Equal(200, code)

	var mine []challenges.Membership
	code = doAuthedRequest(ctx, t, token, "GET", "/challenges/mine", nil, &mine)
	s.Equal(200, code)
	s.Empty(mine)
}
