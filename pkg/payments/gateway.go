package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Payment is the gateway-agnostic view of a created payment
type Payment struct {
	ID           string
	Status       string
	ClientSecret string
}

// WebhookEvent is a parsed gateway notification about a payment outcome
type WebhookEvent struct {
	Type      string // "payment_succeeded", "payment_failed" or "" when irrelevant
	PaymentID string
}

const (
	EventPaymentSucceeded = "payment_succeeded"
	EventPaymentFailed    = "payment_failed"
)

// Gateway abstracts the payment processor so handlers and tests never touch
// the network directly.
type Gateway interface {
	CreatePayment(ctx context.Context, amountCents int64, currency, description, idempotencyKey string) (*Payment, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// StripeGateway implements Gateway over the Stripe API
type StripeGateway struct {
	webhookSecret string
}

// NewStripeGateway configures the Stripe client and returns the gateway
func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret}
}

// CreatePayment opens a PaymentIntent. The idempotency key makes client
// retries safe: Stripe returns the original intent instead of charging twice.
func (g *StripeGateway) CreatePayment(ctx context.Context, amountCents int64, currency, description, idempotencyKey string) (*Payment, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent creation failed: %w", err)
	}
	return &Payment{
		ID:           intent.ID,
		Status:       string(intent.Status),
		ClientSecret: intent.ClientSecret,
	}, nil
}

// ParseWebhook verifies the webhook signature and extracts the payment outcome
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("failed to parse webhook payment intent: %w", err)
		}
		kind := EventPaymentSucceeded
		if event.Type == "payment_intent.payment_failed" {
			kind = EventPaymentFailed
		}
		return &WebhookEvent{Type: kind, PaymentID: intent.ID}, nil
	}

	// Other event types are acknowledged and ignored
	return &WebhookEvent{}, nil
}
