package challenges

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/gamification"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
)

type challengesRepo interface {
	ListActive(ctx context.Context, now time.Time) ([]Challenge, error)
	Get(ctx context.Context, id int) (*Challenge, error)
	Join(ctx context.Context, userID string, challengeID int, joinedAt time.Time) error
	Leave(ctx context.Context, userID string, challengeID int) error
	GetMembership(ctx context.Context, userID string, challengeID int) (*Membership, error)
	UpdateMembership(ctx context.Context, m *Membership) error
	ListMemberships(ctx context.Context, userID string) ([]Membership, error)
}

type xpAwarder interface {
	Award(ctx context.Context, userID string, amount int) (*gamification.UserStats, error)
}

type Service struct {
	repo    challengesRepo
	awarder xpAwarder

	// now is swapped out in tests
	now func() time.Time
}

func NewService(repo challengesRepo, awarder xpAwarder) *Service {
	return &Service{
		repo:    repo,
		awarder: awarder,
		now:     time.Now,
	}
}

func (s *Service) ListActive(ctx context.Context) ([]Challenge, error) {
	return s.repo.ListActive(ctx, s.now())
}

func (s *Service) Join(ctx context.Context, userID string, challengeID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "challenges.join")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err = s.repo.Get(ctx, challengeID); err != nil {
		return err
	}
	return s.repo.Join(ctx, userID, challengeID, s.now())
}

func (s *Service) Leave(ctx context.Context, userID string, challengeID int) error {
	return s.repo.Leave(ctx, userID, challengeID)
}

func (s *Service) Memberships(ctx context.Context, userID string) ([]Membership, error) {
	return s.repo.ListMemberships(ctx, userID)
}

// ReportProgress adds to the user's progress on a challenge. Crossing
// the goal marks the membership completed and pays out the challenge's
// xp reward, exactly once. Progress past the goal is kept as reported.
func (s *Service) ReportProgress(ctx context.Context, userID string, challengeID, amount int) (_ *Membership, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "challenges.reportProgress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if amount <= 0 {
		return nil, fmt.Errorf("progress amount must be positive")
	}

	challenge, err := s.repo.Get(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	membership, err := s.repo.GetMembership(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}

	membership.Progress += amount
	justCompleted := !membership.Completed && membership.Progress >= challenge.Goal
	if justCompleted {
		membership.Completed = true
		completedAt := s.now()
		membership.CompletedAt = &completedAt
	}

	if err = s.repo.UpdateMembership(ctx, membership); err != nil {
		return nil, err
	}

	if justCompleted {
		if _, err := s.awarder.Award(ctx, userID, challenge.XPReward); err != nil {
			log.Errorf("award challenge xp [user %s, challenge %d]: %s", userID, challengeID, err)
		}
		log.Debugf("user %s completed challenge %d, %d xp", userID, challengeID, challenge.XPReward)
	}

	return membership, nil
}
