package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
)

var ErrSubscriberNotFound = errors.New("subscriber not found")

// Subscriber is the locally cached subscription status, keyed by email.
type Subscriber struct {
	Email            string     `json:"email"`
	StripeCustomerID string     `json:"stripeCustomerId,omitempty"`
	Subscribed       bool       `json:"subscribed"`
	SubscriptionTier string     `json:"subscriptionTier,omitempty"`
	SubscriptionEnd  *time.Time `json:"subscriptionEnd,omitempty"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Upsert(ctx context.Context, subscriber Subscriber) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "billingRepo.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err = r.db.Exec(ctx, `
		INSERT INTO subscriber (email, stripe_customer_id, subscribed, subscription_tier, subscription_end, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			subscribed = EXCLUDED.subscribed,
			subscription_tier = EXCLUDED.subscription_tier,
			subscription_end = EXCLUDED.subscription_end,
			updated_at = EXCLUDED.updated_at`,
		subscriber.Email, subscriber.StripeCustomerID, subscriber.Subscribed,
		subscriber.SubscriptionTier, subscriber.SubscriptionEnd, subscriber.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}

	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (_ *Subscriber, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "billingRepo.getByEmail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var subscriber Subscriber
	err = r.db.QueryRow(ctx, `
		SELECT email, stripe_customer_id, subscribed, subscription_tier, subscription_end, updated_at
		FROM subscriber
		WHERE email = $1`,
		email,
	).Scan(
		&subscriber.Email, &subscriber.StripeCustomerID, &subscriber.Subscribed,
		&subscriber.SubscriptionTier, &subscriber.SubscriptionEnd, &subscriber.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubscriberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}

	return &subscriber, nil
}
