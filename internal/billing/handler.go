package billing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/auth"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/metrics"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/user"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/pkg"
)

type stripeClient interface {
	CreateCheckoutSession(ctx context.Context, email, priceID, successURL, cancelURL string) (string, error)
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)
	ListActiveSubscriptions(ctx context.Context, customerID string) ([]Subscription, error)
}

type subscribersRepo interface {
	Upsert(ctx context.Context, subscriber Subscriber) error
	GetByEmail(ctx context.Context, email string) (*Subscriber, error)
}

type usersRepo interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

type Handler struct {
	stripe        stripeClient
	repo          subscribersRepo
	users         usersRepo
	priceIDs      PriceIDs
	successURL    string
	cancelURL     string
	webhookSecret string
	metrics       *metrics.Manager

	// now is swapped out in tests
	now func() time.Time
}

type NewHandlerParams struct {
	Stripe         stripeClient
	Repo           subscribersRepo
	Users          usersRepo
	PriceIDs       PriceIDs
	SuccessURL     string
	CancelURL      string
	WebhookSecret  string
	MetricsManager *metrics.Manager
}

func NewHandler(params NewHandlerParams) *Handler {
	return &Handler{
		stripe:        params.Stripe,
		repo:          params.Repo,
		users:         params.Users,
		priceIDs:      params.PriceIDs,
		successURL:    params.SuccessURL,
		cancelURL:     params.CancelURL,
		webhookSecret: params.WebhookSecret,
		metrics:       params.MetricsManager,
		now:           time.Now,
	}
}

type CreateCheckoutRequest struct {
	Tier string `json:"tier"`
}

type SubscriptionStatus struct {
	Subscribed       bool    `json:"subscribed"`
	SubscriptionTier *string `json:"subscriptionTier"`
	SubscriptionEnd  *string `json:"subscriptionEnd"`
}

func (handler *Handler) HandleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.billing.createCheckout")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var checkoutReq CreateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&checkoutReq); err != nil {
		log.Tracef("create checkout, unmarshal json params: %s", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	priceID, err := handler.priceIDs.ForTier(checkoutReq.Tier)
	if err != nil {
		http.Error(w, "unknown tier", http.StatusBadRequest)
		return
	}

	u, err := handler.users.Get(ctx, userID)
	if err != nil {
		log.Errorf("create checkout, get user %s: %s", userID, err)
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	checkoutURL, err := handler.stripe.CreateCheckoutSession(ctx, u.Email, priceID, handler.successURL, handler.cancelURL)
	if err != nil {
		log.Errorf("create checkout session [user %s, tier %s]: %s", userID, checkoutReq.Tier, err)
		http.Error(w, "create checkout failed", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterCheckoutSessions.Inc()
	respJson, err := json.Marshal(struct {
		URL string `json:"url"`
	}{checkoutURL})
	if err != nil {
		log.Errorf("marshal checkout response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

// HandleCheckSubscription looks up the user's billing customer, derives
// the tier from the active subscription and refreshes the local
// subscriber row either way.
func (handler *Handler) HandleCheckSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.billing.checkSubscription")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	u, err := handler.users.Get(ctx, userID)
	if err != nil {
		log.Errorf("check subscription, get user %s: %s", userID, err)
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	customer, err := handler.stripe.FindCustomerByEmail(ctx, u.Email)
	if err != nil {
		log.Errorf("check subscription, find customer [%s]: %s", u.Email, err)
		http.Error(w, "check subscription failed", http.StatusInternalServerError)
		return
	}
	if customer == nil {
		handler.upsertAndRespond(ctx, w, Subscriber{
			Email:     u.Email,
			UpdatedAt: handler.now(),
		})
		return
	}

	subscriptions, err := handler.stripe.ListActiveSubscriptions(ctx, customer.ID)
	if err != nil {
		log.Errorf("check subscription, list subscriptions [%s]: %s", customer.ID, err)
		http.Error(w, "check subscription failed", http.StatusInternalServerError)
		return
	}
	if len(subscriptions) == 0 {
		handler.upsertAndRespond(ctx, w, Subscriber{
			Email:            u.Email,
			StripeCustomerID: customer.ID,
			UpdatedAt:        handler.now(),
		})
		return
	}

	subscription := subscriptions[0]
	tier, ok := handler.priceIDs.TierForPrice(subscription.PriceID)
	if !ok {
		tier = TierForAmount(subscription.UnitAmount)
	}
	subscriptionEnd := subscription.CurrentPeriodEnd
	handler.upsertAndRespond(ctx, w, Subscriber{
		Email:            u.Email,
		StripeCustomerID: customer.ID,
		Subscribed:       true,
		SubscriptionTier: tier,
		SubscriptionEnd:  &subscriptionEnd,
		UpdatedAt:        handler.now(),
	})
}

func (handler *Handler) upsertAndRespond(ctx context.Context, w http.ResponseWriter, subscriber Subscriber) {
	if err := handler.repo.Upsert(ctx, subscriber); err != nil {
		log.Errorf("upsert subscriber [%s]: %s", subscriber.Email, err)
	}

	status := SubscriptionStatus{Subscribed: subscriber.Subscribed}
	if subscriber.Subscribed {
		status.SubscriptionTier = &subscriber.SubscriptionTier
		subscriptionEnd := subscriber.SubscriptionEnd.UTC().Format(time.RFC3339)
		status.SubscriptionEnd = &subscriptionEnd
	}

	statusJson, err := json.Marshal(status)
	if err != nil {
		log.Errorf("marshal subscription status: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, statusJson)
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID               string `json:"id"`
			Customer         string `json:"customer"`
			Status           string `json:"status"`
			CurrentPeriodEnd int64  `json:"current_period_end"`
			Items            struct {
				Data []struct {
					Price struct {
						ID         string `json:"id"`
						UnitAmount int64  `json:"unit_amount"`
					} `json:"price"`
				} `json:"data"`
			} `json:"items"`
		} `json:"object"`
	} `json:"data"`
}

// HandleWebhook validates the signed payload and recomputes the local
// subscription row on subscription lifecycle events.
func (handler *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.billing.webhook")
	defer span.End()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Errorf("webhook, read payload: %s", err)
		handler.writeWebhookError(w, "read payload failed")
		return
	}

	if err := verifySignature(payload, r.Header.Get("Stripe-Signature"), handler.webhookSecret, handler.now()); err != nil {
		log.Errorf("webhook signature check: %s", err)
		handler.writeWebhookError(w, "invalid signature")
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Errorf("webhook, unmarshal event: %s", err)
		handler.writeWebhookError(w, "invalid payload")
		return
	}

	handler.metrics.CounterWebhookEvents.Inc()

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		if err := handler.applySubscriptionEvent(ctx, event); err != nil {
			log.Errorf("webhook, apply %s: %s", event.Type, err)
			handler.writeWebhookError(w, "processing failed")
			return
		}
	default:
		log.Tracef("webhook, ignoring event type %s", event.Type)
	}

	pkg.WriteJSONResponseOK(w, `{"success":true}`)
}

func (handler *Handler) applySubscriptionEvent(ctx context.Context, event webhookEvent) error {
	object := event.Data.Object
	customer, err := handler.stripe.GetCustomer(ctx, object.Customer)
	if err != nil {
		return err
	}

	subscriber := Subscriber{
		Email:            customer.Email,
		StripeCustomerID: customer.ID,
		UpdatedAt:        handler.now(),
	}

	subscribed := event.Type != "customer.subscription.deleted" && object.Status == "active"
	if subscribed && len(object.Items.Data) > 0 {
		subscriber.Subscribed = true
		subscriber.SubscriptionTier = TierForAmount(object.Items.Data[0].Price.UnitAmount)
		subscriptionEnd := time.Unix(object.CurrentPeriodEnd, 0).UTC()
		subscriber.SubscriptionEnd = &subscriptionEnd
	}

	return handler.repo.Upsert(ctx, subscriber)
}

func (handler *Handler) writeWebhookError(w http.ResponseWriter, message string) {
	pkg.WriteResponseBytes(
		w, pkg.ContentType.JSON,
		[]byte(`{"error":"`+message+`"}`),
		http.StatusBadRequest,
	)
}
