package challenges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/pkg"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// ListActive returns challenges whose window contains the given moment.
func (r *Repo) ListActive(ctx context.Context, now time.Time) (_ []Challenge, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "challengesRepo.listActive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, goal, unit, xp_reward, starts_at, ends_at
		FROM challenge
		WHERE starts_at <= $1 AND ends_at >= $1
		ORDER BY ends_at`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("list active challenges: %w", err)
	}
	defer rows.Close()

	var challenges []Challenge
	for rows.Next() {
		var c Challenge
		if err = rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Goal, &c.Unit,
			&c.XPReward, &c.StartsAt, &c.EndsAt,
		); err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list active challenges rows: %w", err)
	}

	return challenges, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Challenge, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "challengesRepo.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var c Challenge
	err = r.db.QueryRow(ctx, `
		SELECT id, title, description, goal, unit, xp_reward, starts_at, ends_at
		FROM challenge
		WHERE id = $1`,
		id,
	).Scan(
		&c.ID, &c.Title, &c.Description, &c.Goal, &c.Unit,
		&c.XPReward, &c.StartsAt, &c.EndsAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}

	return &c, nil
}

func (r *Repo) Join(ctx context.Context, userID string, challengeID int, joinedAt time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "challengesRepo.join")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err = r.db.Exec(ctx, `
		INSERT INTO challenge_membership (user_id, challenge_id, progress, completed, joined_at)
		VALUES ($1, $2, 0, false, $3)`,
		userID, challengeID, joinedAt,
	); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrAlreadyJoined
		}
		if pkg.IsForeignKeyViolationError(err) {
			return ErrChallengeNotFound
		}
		return fmt.Errorf("insert challenge membership: %w", err)
	}

	return nil
}

func (r *Repo) Leave(ctx context.Context, userID string, challengeID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "challengesRepo.leave")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `
		DELETE FROM challenge_membership
		WHERE user_id = $1 AND challenge_id = $2`,
		userID, challengeID,
	)
	if err != nil {
		return fmt.Errorf("delete challenge membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotJoined
	}

	return nil
}

func (r *Repo) GetMembership(ctx context.Context, userID string, challengeID int) (_ *Membership, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "challengesRepo.getMembership")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var m Membership
	err = r.db.QueryRow(ctx, `
		SELECT user_id, challenge_id, progress, completed, joined_at, completed_at
		FROM challenge_membership
		WHERE user_id = $1 AND challenge_id = $2`,
		userID, challengeID,
	).Scan(&m.UserID, &m.ChallengeID, &m.Progress, &m.Completed, &m.JoinedAt, &m.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotJoined
	}
	if err != nil {
		return nil, fmt.Errorf("get challenge membership: %w", err)
	}

	return &m, nil
}

func (r *Repo) UpdateMembership(ctx context.Context, m *Membership) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "challengesRepo.updateMembership")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `
		UPDATE challenge_membership
		SET progress = $3, completed = $4, completed_at = $5
		WHERE user_id = $1 AND challenge_id = $2`,
		m.UserID, m.ChallengeID, m.Progress, m.Completed, m.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update challenge membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotJoined
	}

	return nil
}

func (r *Repo) ListMemberships(ctx context.Context, userID string) (_ []Membership, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "challengesRepo.listMemberships")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT user_id, challenge_id, progress, completed, joined_at, completed_at
		FROM challenge_membership
		WHERE user_id = $1
		ORDER BY joined_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list challenge memberships: %w", err)
	}
	defer rows.Close()

	var memberships []Membership
	for rows.Next() {
		var m Membership
		if err = rows.Scan(
			&m.UserID, &m.ChallengeID, &m.Progress, &m.Completed, &m.JoinedAt, &m.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan challenge membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list challenge memberships rows: %w", err)
	}

	return memberships, nil
}
