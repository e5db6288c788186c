package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockProvider is an in-memory Provider for tests and local development. It
// hands out deterministic session ids and accepts unsigned webhook payloads
// shaped like WebhookEvent.
type MockProvider struct {
	mu       sync.Mutex
	sessions []CheckoutParams

	// FailNext makes the next CreateCheckoutSession call fail.
	FailNext bool

	// RejectWebhooks makes ParseWebhookEvent return ErrInvalidSignature.
	RejectWebhooks bool
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates an empty mock.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) CreateCheckoutSession(_ context.Context, params CheckoutParams) (*CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return nil, fmt.Errorf("mock billing: session creation failed")
	}
	m.sessions = append(m.sessions, params)
	n := len(m.sessions)
	return &CheckoutSession{
		ID:              fmt.Sprintf("cs_mock_%d", n),
		URL:             fmt.Sprintf("https://checkout.example.test/cs_mock_%d", n),
		PaymentIntentID: fmt.Sprintf("pi_mock_%d", n),
	}, nil
}

func (m *MockProvider) ParseWebhookEvent(payload []byte, _ string) (*WebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RejectWebhooks {
		return nil, ErrInvalidSignature
	}
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("mock billing: bad webhook payload: %w", err)
	}
	return &event, nil
}

// Sessions returns the checkout sessions created so far.
func (m *MockProvider) Sessions() []CheckoutParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CheckoutParams, len(m.sessions))
	copy(out, m.sessions)
	return out
}
