package workout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
)

var ErrSnapshotNotFound = errors.New("workout snapshot not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) SaveSnapshot(ctx context.Context, snapshot Snapshot) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutRepo.saveSnapshot")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exerciseState, err := marshalExerciseState(snapshot.ExerciseState)
	if err != nil {
		return err
	}

	if _, err = r.db.Exec(ctx, `
		INSERT INTO workout_snapshot (
			session_id, user_id, workout_type, current_exercise_index,
			segment_elapsed_seconds, is_resting, total_elapsed_seconds,
			exercise_state, is_completed, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		snapshot.SessionID, snapshot.UserID, snapshot.WorkoutType,
		snapshot.CurrentExerciseIndex, snapshot.SegmentElapsedSeconds,
		snapshot.IsResting, snapshot.TotalElapsedSeconds,
		exerciseState, snapshot.IsCompleted, snapshot.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert workout snapshot: %w", err)
	}

	return nil
}

// LatestIncompleteSnapshot returns the most recent incomplete snapshot
// for the user on the given calendar day.
func (r *Repo) LatestIncompleteSnapshot(ctx context.Context, userID string, day time.Time) (_ *Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutRepo.latestIncompleteSnapshot")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var (
		snapshot      Snapshot
		exerciseState []byte
	)
	err = r.db.QueryRow(ctx, `
		SELECT
			id, session_id, user_id, workout_type, current_exercise_index,
			segment_elapsed_seconds, is_resting, total_elapsed_seconds,
			exercise_state, is_completed, created_at
		FROM workout_snapshot
		WHERE user_id = $1 AND is_completed = false AND created_at::date = $2::date
		ORDER BY created_at DESC
		LIMIT 1`,
		userID, day,
	).Scan(
		&snapshot.ID, &snapshot.SessionID, &snapshot.UserID, &snapshot.WorkoutType,
		&snapshot.CurrentExerciseIndex, &snapshot.SegmentElapsedSeconds,
		&snapshot.IsResting, &snapshot.TotalElapsedSeconds,
		&exerciseState, &snapshot.IsCompleted, &snapshot.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest incomplete snapshot: %w", err)
	}

	if snapshot.ExerciseState, err = unmarshalExerciseState(exerciseState); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (r *Repo) SaveCompleted(ctx context.Context, completed CompletedWorkout) (_ *CompletedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutRepo.saveCompleted")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exerciseData, err := marshalExerciseState(completed.ExerciseData)
	if err != nil {
		return nil, err
	}

	if err = r.db.QueryRow(ctx, `
		INSERT INTO completed_workout (
			user_id, session_id, workout_type, duration_seconds,
			calories_burned, exercise_data, notes, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		completed.UserID, completed.SessionID, completed.WorkoutType,
		completed.DurationSeconds, completed.CaloriesBurned,
		exerciseData, completed.Notes, completed.CompletedAt,
	).Scan(&completed.ID); err != nil {
		return nil, fmt.Errorf("insert completed workout: %w", err)
	}

	return &completed, nil
}

// ListCompleted returns one page of the user's completed workouts,
// newest first, together with the total count.
func (r *Repo) ListCompleted(ctx context.Context, userID string, page, size int) (_ []CompletedWorkout, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutRepo.listCompleted")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM completed_workout WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count completed workouts: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT
			id, user_id, session_id, workout_type, duration_seconds,
			calories_burned, exercise_data, notes, completed_at
		FROM completed_workout
		WHERE user_id = $1
		ORDER BY completed_at DESC
		LIMIT $2 OFFSET $3`,
		userID, size, (page-1)*size,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list completed workouts: %w", err)
	}
	defer rows.Close()

	var workouts []CompletedWorkout
	for rows.Next() {
		var (
			w            CompletedWorkout
			exerciseData []byte
		)
		if err = rows.Scan(
			&w.ID, &w.UserID, &w.SessionID, &w.WorkoutType, &w.DurationSeconds,
			&w.CaloriesBurned, &exerciseData, &w.Notes, &w.CompletedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan completed workout: %w", err)
		}
		if w.ExerciseData, err = unmarshalExerciseState(exerciseData); err != nil {
			return nil, 0, err
		}
		workouts = append(workouts, w)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list completed workouts rows: %w", err)
	}

	return workouts, total, nil
}
