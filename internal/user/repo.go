package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
)

var ErrUserNotFound = errors.New("user not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, u User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.user.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO app_user
				(id, username, email, password_hash, full_name, avatar_url, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FullName, u.AvatarURL, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("user.id", u.ID))
	return &u, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.user.getByEmail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	u := &User{}
	err = r.db.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, full_name, avatar_url, created_at
			FROM app_user WHERE email = $1;`,
		email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.user.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", id))

	u := &User{}
	err = r.db.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, full_name, avatar_url, created_at
			FROM app_user WHERE id = $1;`,
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *Repo) UpdateProfile(ctx context.Context, u *User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.user.updateProfile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", u.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE app_user SET username = $1, full_name = $2, avatar_url = $3 WHERE id = $4;`,
		u.Username, u.FullName, u.AvatarURL, u.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
