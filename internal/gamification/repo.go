package gamification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// GetStats returns the user's stats row, or a fresh level-1 default when
// the user has none yet. The row itself is created on the first save.
func (r *Repo) GetStats(ctx context.Context, userID string) (_ *UserStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gamificationRepo.getStats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var stats UserStats
	err = r.db.QueryRow(ctx, `
		SELECT user_id, level, xp, streak, workouts_completed, last_workout_date
		FROM user_stats
		WHERE user_id = $1`,
		userID,
	).Scan(
		&stats.UserID, &stats.Level, &stats.XP, &stats.Streak,
		&stats.WorkoutsCompleted, &stats.LastWorkoutDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return defaultStats(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}

	return &stats, nil
}

func (r *Repo) SaveStats(ctx context.Context, stats *UserStats) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gamificationRepo.saveStats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err = r.db.Exec(ctx, `
		INSERT INTO user_stats (user_id, level, xp, streak, workouts_completed, last_workout_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			level = EXCLUDED.level,
			xp = EXCLUDED.xp,
			streak = EXCLUDED.streak,
			workouts_completed = EXCLUDED.workouts_completed,
			last_workout_date = EXCLUDED.last_workout_date`,
		stats.UserID, stats.Level, stats.XP, stats.Streak,
		stats.WorkoutsCompleted, stats.LastWorkoutDate,
	); err != nil {
		return fmt.Errorf("upsert user stats: %w", err)
	}

	return nil
}

// AwardAchievement stores the award once per user per achievement, a
// repeat award reports false.
func (r *Repo) AwardAchievement(ctx context.Context, userID, achievementID string, awardedAt time.Time) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gamificationRepo.awardAchievement")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_achievement (user_id, achievement_id, awarded_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`,
		userID, achievementID, awardedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert user achievement: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *Repo) ListAchievements(ctx context.Context, userID string) (_ []UserAchievement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gamificationRepo.listAchievements")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT achievement_id, awarded_at
		FROM user_achievement
		WHERE user_id = $1
		ORDER BY awarded_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}
	defer rows.Close()

	var achievements []UserAchievement
	for rows.Next() {
		var a UserAchievement
		if err = rows.Scan(&a.AchievementID, &a.AwardedAt); err != nil {
			return nil, fmt.Errorf("scan user achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list user achievements rows: %w", err)
	}

	return achievements, nil
}
