package exercises

import (
	"context"
	"errors"
	"fmt"

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

func (r *Repo) List(ctx context.Context) (_ []ExerciseInfo, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercisesRepo.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, muscle_group, difficulty, demo_video_url
		FROM exercise_info
		ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	var exercises []ExerciseInfo
	for rows.Next() {
		var e ExerciseInfo
		if err = rows.Scan(&e.ID, &e.Name, &e.MuscleGroup, &e.Difficulty, &e.DemoVideoURL); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list exercises rows: %w", err)
	}

	return exercises, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *ExerciseInfo, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercisesRepo.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var e ExerciseInfo
	err = r.db.QueryRow(ctx, `
		SELECT id, name, muscle_group, difficulty, demo_video_url
		FROM exercise_info
		WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Name, &e.MuscleGroup, &e.Difficulty, &e.DemoVideoURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise: %w", err)
	}

	return &e, nil
}

func (r *Repo) Add(ctx context.Context, e ExerciseInfo) (_ *ExerciseInfo, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercisesRepo.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err = r.db.QueryRow(ctx, `
		INSERT INTO exercise_info (name, muscle_group, difficulty, demo_video_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		e.Name, e.MuscleGroup, e.Difficulty, e.DemoVideoURL,
	).Scan(&e.ID); err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	return &e, nil
}

func (r *Repo) Update(ctx context.Context, e *ExerciseInfo) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercisesRepo.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `
		UPDATE exercise_info
		SET name = $2, muscle_group = $3, difficulty = $4, demo_video_url = $5
		WHERE id = $1`,
		e.ID, e.Name, e.MuscleGroup, e.Difficulty, e.DemoVideoURL,
	)
	if err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exercisesRepo.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM exercise_info WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}

	return nil
}
