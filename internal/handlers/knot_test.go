package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/internal/response"
)

func newTestKnotHandler(s *fakeSyncSvc, txs *fakeTxReader) *knotHandlers {
	log := slog.New(slog.NewTextHandler(testDiscard{}, nil))
	deps := &Deps{
		ResponseHandler: response.New(log),
		SyncSvc:         s,
		TxReader:        txs,
	}
	return NewKnotHandlers(deps)
}

func TestWebhookHandlerAcknowledges(t *testing.T) {
	h := newTestKnotHandler(&fakeSyncSvc{}, &fakeTxReader{})

	body := `{"event_type":"TRANSACTIONS_UPDATED","user_id":"aman","transactions":[]}`
	req := httptest.NewRequest(http.MethodPost, "/knot/webhook", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.Webhook(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["received"] != true {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
}

func TestWebhookHandlerRejectsGarbage(t *testing.T) {
	h := newTestKnotHandler(&fakeSyncSvc{}, &fakeTxReader{})

	req := httptest.NewRequest(http.MethodPost, "/knot/webhook", bytes.NewBufferString("not json"))
	rr := httptest.NewRecorder()

	h.Webhook(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateSessionHandlerRequiresUserID(t *testing.T) {
	h := newTestKnotHandler(&fakeSyncSvc{}, &fakeTxReader{})

	req := httptest.NewRequest(http.MethodPost, "/knot/session", bytes.NewBufferString(`{}`))
	rr := httptest.NewRecorder()

	h.CreateSession(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestWebhookTransactionsDefaultsToWebhookUser(t *testing.T) {
	txs := &fakeTxReader{txs: []models.Transaction{{ID: "t1"}}}
	h := newTestKnotHandler(&fakeSyncSvc{}, txs)

	req := httptest.NewRequest(http.MethodGet, "/knot/webhook", nil)
	rr := httptest.NewRecorder()

	h.WebhookTransactions(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	if txs.gotUID != "webhook_user" {
		t.Fatalf("user = %q, want webhook_user", txs.gotUID)
	}
	if txs.gotQ.Limit != 20 {
		t.Fatalf("limit = %d, want 20", txs.gotQ.Limit)
	}
	var resp dto.TransactionsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 1 || len(resp.Transactions) != 1 {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
}

func TestWebhookTransactionsDegradesOnStoreError(t *testing.T) {
	txs := &fakeTxReader{err: errors.New("firestore down")}
	h := newTestKnotHandler(&fakeSyncSvc{}, txs)

	req := httptest.NewRequest(http.MethodGet, "/knot/webhook?user_id=aman", nil)
	rr := httptest.NewRecorder()

	h.WebhookTransactions(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	var resp dto.TransactionsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error == "" {
		t.Fatal("expected error field in response")
	}
	if resp.Transactions == nil || len(resp.Transactions) != 0 {
		t.Fatalf("transactions = %#v, want empty slice", resp.Transactions)
	}
}
