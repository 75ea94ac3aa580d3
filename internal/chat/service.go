package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/metrics"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
)

// FallbackReply is returned verbatim whenever the completion upstream
// fails.
const FallbackReply = "I'm having a little trouble connecting to my training brain right now. " +
	"Give me a moment and try again - your progress is safe!"

var ErrUpstreamFailed = errors.New("completion upstream failed")

type chatRepo interface {
	SaveMessage(ctx context.Context, msg Message) error
	ListSessions(ctx context.Context, userID string) ([]SessionInfo, error)
	SessionMessages(ctx context.Context, userID, sessionID string) ([]Message, error)
}

type Service struct {
	client  completionClient
	repo    chatRepo
	metrics *metrics.Manager
}

func NewService(client completionClient, repo chatRepo, metricsManager *metrics.Manager) *Service {
	return &Service{
		client:  client,
		repo:    repo,
		metrics: metricsManager,
	}
}

type RelayResult struct {
	Reply            string        `json:"reply"`
	SessionID        string        `json:"sessionId"`
	SuggestedVideos  []VideoRecord `json:"suggestedVideos"`
	PreviousSessions []SessionInfo `json:"previousSessions"`
}

// Relay forwards one user message to the trainer model and persists the
// exchange as two rows sharing the session id. An upstream failure
// yields ErrUpstreamFailed, the caller answers with the fallback reply.
func (s *Service) Relay(
	ctx context.Context,
	userID, message, category, sessionID string,
	isNewSession bool,
) (_ *RelayResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "chat.relay")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if isNewSession || sessionID == "" {
		sessionID = uuid.NewString()
	}

	reply, err := s.client.Complete(ctx, buildMessages(message, category, isNewSession))
	if err != nil {
		log.Errorf("chat completion [user %s]: %s", userID, err)
		s.metrics.CounterChatRelayFallbacks.Inc()
		return nil, ErrUpstreamFailed
	}
	s.metrics.CounterChatRelays.Inc()

	now := time.Now()
	userMsg := Message{
		UserID:    userID,
		SessionID: sessionID,
		Role:      "user",
		Content:   message,
		Category:  category,
		CreatedAt: now,
	}
	assistantMsg := Message{
		UserID:    userID,
		SessionID: sessionID,
		Role:      "assistant",
		Content:   reply,
		Category:  category,
		CreatedAt: now.Add(time.Millisecond),
	}
	// the exchange is persisted best-effort, a failed write never takes
	// down the reply
	if err := s.repo.SaveMessage(ctx, userMsg); err != nil {
		log.Errorf("save chat message [user %s]: %s", userID, err)
	}
	if err := s.repo.SaveMessage(ctx, assistantMsg); err != nil {
		log.Errorf("save chat reply [user %s]: %s", userID, err)
	}

	sessions, err := s.repo.ListSessions(ctx, userID)
	if err != nil {
		log.Errorf("list chat sessions [user %s]: %s", userID, err)
		sessions = []SessionInfo{}
	}

	return &RelayResult{
		Reply:            reply,
		SessionID:        sessionID,
		SuggestedVideos:  suggestVideos(reply),
		PreviousSessions: sessions,
	}, nil
}

func (s *Service) SessionMessages(ctx context.Context, userID, sessionID string) ([]Message, error) {
	return s.repo.SessionMessages(ctx, userID, sessionID)
}
