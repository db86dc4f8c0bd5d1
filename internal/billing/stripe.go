package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// StripeProvider implements Provider using Stripe hosted checkout
type StripeProvider struct {
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string
	logger        *zap.Logger
}

// NewStripeProvider creates a new Stripe provider
func NewStripeProvider(secretKey, webhookSecret, successURL, cancelURL string, logger *zap.Logger) (*StripeProvider, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	if webhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret is required")
	}
	if successURL == "" || cancelURL == "" {
		return nil, fmt.Errorf("success and cancel URLs are required")
	}

	stripe.Key = secretKey

	return &StripeProvider{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		logger:        logger,
	}, nil
}

// CreateCheckoutSession creates a Stripe checkout session for a booking
func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	if err := s.validateCheckoutParams(params); err != nil {
		s.logger.Error("Invalid checkout parameters",
			zap.Error(err),
			zap.String("booking_id", params.BookingID))
		return nil, fmt.Errorf("invalid checkout parameters: %w", err)
	}

	s.logger.Info("Creating Stripe checkout session",
		zap.String("booking_id", params.BookingID),
		zap.String("tier_code", params.TierCode),
		zap.Int64("amount", params.Amount),
		zap.String("currency", params.Currency))

	sessionParams := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: []*string{
			stripe.String("card"),
		},
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(params.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Course " + params.TierCode),
						Description: stripe.String(params.Description),
					},
					UnitAmount: stripe.Int64(params.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.successURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cancelURL),
		Metadata: map[string]string{
			"booking_id": params.BookingID,
			"client_id":  params.ClientID,
			"tier_code":  params.TierCode,
		},
		BillingAddressCollection: stripe.String("auto"),
		CustomerCreation:         stripe.String("if_required"),
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	sessionParams.Context = ctx

	checkoutSession, err := session.New(sessionParams)
	if err != nil {
		s.logger.Error("Failed to create Stripe checkout session",
			zap.Error(err),
			zap.String("booking_id", params.BookingID))
		return nil, fmt.Errorf("failed to create Stripe checkout session: %w", err)
	}

	s.logger.Info("Stripe checkout session created",
		zap.String("session_id", checkoutSession.ID),
		zap.String("booking_id", params.BookingID))

	return &CheckoutSession{
		SessionID: checkoutSession.ID,
		URL:       checkoutSession.URL,
		Provider:  "stripe",
	}, nil
}

func (s *StripeProvider) validateCheckoutParams(params CheckoutSessionParams) error {
	if params.BookingID == "" {
		return fmt.Errorf("booking_id is required")
	}
	if params.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if params.TierCode == "" {
		return fmt.Errorf("tier_code is required")
	}
	if params.Amount <= 0 {
		return fmt.Errorf("amount must be greater than 0")
	}
	if len(params.Currency) != 3 {
		return fmt.Errorf("currency must be a 3-character code")
	}
	return nil
}

// ValidateWebhookSignature validates a Stripe webhook signature
func (s *StripeProvider) ValidateWebhookSignature(payload []byte, signature string) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty payload")
	}
	if signature == "" {
		return fmt.Errorf("empty signature")
	}

	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		s.logger.Error("Failed to validate webhook signature", zap.Error(err))
		return fmt.Errorf("failed to validate webhook signature: %w", err)
	}

	// Replay protection
	eventAge := time.Now().Unix() - event.Created
	if eventAge > 300 {
		s.logger.Warn("Webhook event is too old",
			zap.String("event_id", event.ID),
			zap.Int64("event_age_seconds", eventAge))
		return fmt.Errorf("webhook event is too old: %d seconds", eventAge)
	}

	return nil
}

// ParseWebhookEvent parses a Stripe webhook event
func (s *StripeProvider) ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook event: %w", err)
	}
	if event.ID == "" {
		return nil, fmt.Errorf("webhook event missing ID field")
	}
	if event.Type == "" {
		return nil, fmt.Errorf("webhook event missing type field")
	}
	return &event, nil
}

// ExtractSessionData extracts checkout session data from a webhook event
func (s *StripeProvider) ExtractSessionData(event *WebhookEvent) (*SessionData, error) {
	var envelope struct {
		Object struct {
			ID          string `json:"id"`
			AmountTotal int64  `json:"amount_total"`
			Currency    string `json:"currency"`
			Status      string `json:"status"`
			Metadata    struct {
				BookingID string `json:"booking_id"`
				ClientID  string `json:"client_id"`
			} `json:"metadata"`
		} `json:"object"`
	}
	if err := json.Unmarshal(event.Data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to extract session data: %w", err)
	}
	if envelope.Object.ID == "" {
		return nil, fmt.Errorf("webhook event has no session object")
	}

	return &SessionData{
		SessionID: envelope.Object.ID,
		BookingID: envelope.Object.Metadata.BookingID,
		ClientID:  envelope.Object.Metadata.ClientID,
		Amount:    envelope.Object.AmountTotal,
		Currency:  envelope.Object.Currency,
		Status:    envelope.Object.Status,
	}, nil
}
