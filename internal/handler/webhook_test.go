package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/awadhalla/souq/internal/billing"
	"github.com/awadhalla/souq/internal/domain"
)

type stubWebhookService struct {
	events []*billing.WebhookEvent
	err    error
}

func (s *stubWebhookService) HandleEvent(_ context.Context, event *billing.WebhookEvent) error {
	s.events = append(s.events, event)
	return s.err
}

func postWebhook(h *WebhookHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=stub")
	w := httptest.NewRecorder()
	h.HandleStripe(w, req)
	return w
}

func TestHandleStripe_AcknowledgesEvent(t *testing.T) {
	svc := &stubWebhookService{}
	h := NewWebhookHandler(billing.NewMockProvider(), svc)

	payload, _ := json.Marshal(billing.WebhookEvent{
		ID:      "evt_1",
		Type:    billing.EventCheckoutCompleted,
		OrderID: 7,
		Paid:    true,
	})
	w := postWebhook(h, string(payload))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(svc.events) != 1 || svc.events[0].ID != "evt_1" {
		t.Fatalf("service did not receive the event: %+v", svc.events)
	}

	var body map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if !body["received"] {
		t.Error("expected received=true")
	}
}

func TestHandleStripe_RejectsBadSignature(t *testing.T) {
	provider := billing.NewMockProvider()
	provider.RejectWebhooks = true
	svc := &stubWebhookService{}
	h := NewWebhookHandler(provider, svc)

	w := postWebhook(h, `{"id":"evt_1"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if len(svc.events) != 0 {
		t.Error("event must not reach the service on a bad signature")
	}
}

func TestHandleStripe_RejectsMalformedPayload(t *testing.T) {
	h := NewWebhookHandler(billing.NewMockProvider(), &stubWebhookService{})

	w := postWebhook(h, "not json")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleStripe_ProcessingFailureTriggersRedelivery(t *testing.T) {
	svc := &stubWebhookService{err: domain.Internal(context.DeadlineExceeded, "webhook.handle", "datastore down")}
	h := NewWebhookHandler(billing.NewMockProvider(), svc)

	payload, _ := json.Marshal(billing.WebhookEvent{ID: "evt_1", Type: billing.EventCheckoutCompleted})
	w := postWebhook(h, string(payload))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
