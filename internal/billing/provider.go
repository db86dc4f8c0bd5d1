package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Provider defines the interface for payment providers
type Provider interface {
	// CreateCheckoutSession creates a hosted checkout session for a booking
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error)

	// ValidateWebhookSignature validates a webhook signature and payload
	ValidateWebhookSignature(payload []byte, signature string) error

	// ParseWebhookEvent parses a webhook payload into a WebhookEvent
	ParseWebhookEvent(payload []byte) (*WebhookEvent, error)

	// ExtractSessionData extracts checkout session data from a webhook event
	ExtractSessionData(event *WebhookEvent) (*SessionData, error)
}

// CheckoutSessionParams contains parameters for creating a checkout session
type CheckoutSessionParams struct {
	BookingID   string
	ClientID    string
	TierCode    string
	Description string
	Amount      int64 // smallest currency unit
	Currency    string
}

// CheckoutSession represents a created checkout session
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	Provider  string `json:"provider"`
}

// WebhookEvent represents a provider webhook event
type WebhookEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Created int64           `json:"created"`
}

// SessionData carries the booking-relevant fields of a completed session
type SessionData struct {
	SessionID string `json:"session_id"`
	BookingID string `json:"booking_id"`
	ClientID  string `json:"client_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
}

// Webhook event types handled by the checkout flow
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

// MockProvider is an in-memory provider for development and tests
type MockProvider struct {
	mu       sync.Mutex
	sessions map[string]CheckoutSessionParams
}

// NewMockProvider creates a new mock provider
func NewMockProvider() *MockProvider {
	return &MockProvider{sessions: make(map[string]CheckoutSessionParams)}
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	if params.Amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}
	sessionID := "mock_" + uuid.New().String()

	m.mu.Lock()
	m.sessions[sessionID] = params
	m.mu.Unlock()

	return &CheckoutSession{
		SessionID: sessionID,
		URL:       "https://checkout.mock.local/" + sessionID,
		Provider:  "mock",
	}, nil
}

func (m *MockProvider) ValidateWebhookSignature(payload []byte, signature string) error {
	if signature == "" {
		return fmt.Errorf("empty signature")
	}
	return nil
}

func (m *MockProvider) ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook event: %w", err)
	}
	return &event, nil
}

func (m *MockProvider) ExtractSessionData(event *WebhookEvent) (*SessionData, error) {
	var data SessionData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to extract session data: %w", err)
	}
	return &data, nil
}

// CompletedEvent builds a checkout.session.completed payload for a mock
// session, mirroring what the real provider would deliver.
func (m *MockProvider) CompletedEvent(sessionID string) ([]byte, error) {
	m.mu.Lock()
	params, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}

	data, err := json.Marshal(SessionData{
		SessionID: sessionID,
		BookingID: params.BookingID,
		ClientID:  params.ClientID,
		Amount:    params.Amount,
		Currency:  params.Currency,
		Status:    "complete",
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(WebhookEvent{
		ID:   "evt_" + uuid.New().String(),
		Type: EventCheckoutCompleted,
		Data: data,
	})
}
