package gamification

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/metrics"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
)

type statsRepo interface {
	GetStats(ctx context.Context, userID string) (*UserStats, error)
	SaveStats(ctx context.Context, stats *UserStats) error
	AwardAchievement(ctx context.Context, userID, achievementID string, awardedAt time.Time) (bool, error)
	ListAchievements(ctx context.Context, userID string) ([]UserAchievement, error)
}

// Ledger converts xp awards into level state. A single award levels up
// at most once, overflow past the threshold is carried as xp.
type Ledger struct {
	repo    statsRepo
	metrics *metrics.Manager
}

func NewLedger(repo statsRepo, metricsManager *metrics.Manager) *Ledger {
	return &Ledger{
		repo:    repo,
		metrics: metricsManager,
	}
}

// Award applies an xp amount and persists the result. Once the in-memory
// state has advanced a failed write is only logged, never rolled back or
// retried.
func (l *Ledger) Award(ctx context.Context, userID string, amount int) (_ *UserStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.award")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	stats, err := l.repo.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	l.applyAward(stats, amount)
	l.persist(ctx, stats)
	return stats, nil
}

// AwardWorkoutCompletion awards xp and rolls the completion counters:
// streak, workouts completed, last workout date, plus any achievements
// the user now qualifies for.
func (l *Ledger) AwardWorkoutCompletion(ctx context.Context, userID string, xp int, completedAt time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.awardWorkoutCompletion")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	stats, err := l.repo.GetStats(ctx, userID)
	if err != nil {
		return err
	}

	l.applyAward(stats, xp)
	stats.Streak = nextStreak(stats.LastWorkoutDate, completedAt, stats.Streak)
	stats.WorkoutsCompleted++
	workoutDate := completedAt.Truncate(24 * time.Hour)
	stats.LastWorkoutDate = &workoutDate

	l.persist(ctx, stats)
	l.awardAchievements(ctx, stats, completedAt)
	return nil
}

func (l *Ledger) applyAward(stats *UserStats, amount int) {
	newXp := stats.XP + amount
	threshold := stats.XPToNextLevel()
	if newXp >= threshold {
		stats.Level++
		stats.XP = newXp - threshold
		l.metrics.CounterLevelUps.Inc()
		log.Debugf("user %s leveled up to %d", stats.UserID, stats.Level)
	} else {
		stats.XP = newXp
	}
	l.metrics.CounterXPAwarded.Add(float64(amount))
}

func (l *Ledger) persist(ctx context.Context, stats *UserStats) {
	if err := l.repo.SaveStats(ctx, stats); err != nil {
		log.Errorf("save user stats [user %s]: %s", stats.UserID, err)
	}
}

func (l *Ledger) awardAchievements(ctx context.Context, stats *UserStats, awardedAt time.Time) {
	for _, achievement := range qualifiedAchievements(stats) {
		awarded, err := l.repo.AwardAchievement(ctx, stats.UserID, achievement.ID, awardedAt)
		if err != nil {
			log.Errorf("award achievement %s [user %s]: %s", achievement.ID, stats.UserID, err)
			continue
		}
		if awarded {
			log.Debugf("user %s earned achievement %s", stats.UserID, achievement.ID)
		}
	}
}

func (l *Ledger) Stats(ctx context.Context, userID string) (*UserStats, error) {
	return l.repo.GetStats(ctx, userID)
}

func (l *Ledger) UserAchievements(ctx context.Context, userID string) ([]UserAchievement, error) {
	return l.repo.ListAchievements(ctx, userID)
}

// nextStreak: consecutive calendar days extend the streak, a repeat on
// the same day leaves it untouched, anything else starts over at one.
func nextStreak(lastWorkout *time.Time, completedAt time.Time, streak int) int {
	if lastWorkout == nil {
		return 1
	}
	lastY, lastM, lastD := lastWorkout.Date()
	prevDay := completedAt.AddDate(0, 0, -1)
	if y, m, d := completedAt.Date(); y == lastY && m == lastM && d == lastD {
		return streak
	}
	if y, m, d := prevDay.Date(); y == lastY && m == lastM && d == lastD {
		return streak + 1
	}
	return 1
}
