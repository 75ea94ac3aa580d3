package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
)

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Subscription struct {
	ID               string
	PriceID          string
	UnitAmount       int64
	CurrentPeriodEnd time.Time
}

// StripeAPI is a narrow form-encoded client for the handful of payment
// API calls the billing handlers need.
type StripeAPI struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewStripeAPI(baseURL, secretKey string, httpClient *http.Client) *StripeAPI {
	return &StripeAPI{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: httpClient,
	}
}

type checkoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (api *StripeAPI) CreateCheckoutSession(ctx context.Context, email, priceID, successURL, cancelURL string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stripeApi.createCheckoutSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer_email", email)
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)

	var resp checkoutSessionResponse
	if err = api.postForm(ctx, "/v1/checkout/sessions", form, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

type customerListResponse struct {
	Data []Customer `json:"data"`
}

// FindCustomerByEmail returns nil when no billing customer exists yet.
func (api *StripeAPI) FindCustomerByEmail(ctx context.Context, email string) (_ *Customer, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stripeApi.findCustomerByEmail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := url.Values{}
	query.Set("email", email)
	query.Set("limit", "1")

	var resp customerListResponse
	if err = api.get(ctx, "/v1/customers?"+query.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

func (api *StripeAPI) GetCustomer(ctx context.Context, customerID string) (_ *Customer, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stripeApi.getCustomer")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var customer Customer
	if err = api.get(ctx, "/v1/customers/"+customerID, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

type subscriptionListResponse struct {
	Data []struct {
		ID               string `json:"id"`
		CurrentPeriodEnd int64  `json:"current_period_end"`
		Items            struct {
			Data []struct {
				Price struct {
					ID         string `json:"id"`
					UnitAmount int64  `json:"unit_amount"`
				} `json:"price"`
			} `json:"data"`
		} `json:"items"`
	} `json:"data"`
}

// ListActiveSubscriptions returns the customer's active subscriptions,
// flattened to the fields the tier mapping needs.
func (api *StripeAPI) ListActiveSubscriptions(ctx context.Context, customerID string) (_ []Subscription, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stripeApi.listActiveSubscriptions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := url.Values{}
	query.Set("customer", customerID)
	query.Set("status", "active")

	var resp subscriptionListResponse
	if err = api.get(ctx, "/v1/subscriptions?"+query.Encode(), &resp); err != nil {
		return nil, err
	}

	var subscriptions []Subscription
	for _, sub := range resp.Data {
		s := Subscription{
			ID:               sub.ID,
			CurrentPeriodEnd: time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		}
		if len(sub.Items.Data) > 0 {
			s.PriceID = sub.Items.Data[0].Price.ID
			s.UnitAmount = sub.Items.Data[0].Price.UnitAmount
		}
		subscriptions = append(subscriptions, s)
	}
	return subscriptions, nil
}

func (api *StripeAPI) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create payment api request: %w", err)
	}
	return api.do(req, out)
}

func (api *StripeAPI) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, api.baseURL+path, strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("create payment api request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return api.do(req, out)
}

func (api *StripeAPI) do(req *http.Request, out any) (err error) {
	req.Header.Set("Authorization", "Bearer "+api.secretKey)

	resp, err := api.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment api request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = closeErr
		}
	}()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read payment api response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("payment api status %d: %s", resp.StatusCode, respBytes)
	}

	if err = json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal payment api response: %w", err)
	}
	return nil
}
