package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/internal/response"
)

// fakes implementing handler interfaces
type fakeSyncSvc struct {
	result dto.SyncResult
	err    error

	gotSync struct {
		userID     string
		merchantID int
	}
}

func (f *fakeSyncSvc) SyncMerchant(ctx context.Context, userID string, merchantID int, merchantName, cursor string) (dto.SyncResult, error) {
	f.gotSync.userID = userID
	f.gotSync.merchantID = merchantID
	return f.result, f.err
}
func (f *fakeSyncSvc) SyncAll(ctx context.Context, userID string) (dto.SyncAllResult, error) {
	return dto.SyncAllResult{}, f.err
}
func (f *fakeSyncSvc) IngestWebhook(ctx context.Context, payload dto.KnotWebhook) (int, error) {
	return 0, f.err
}
func (f *fakeSyncSvc) CreateSession(ctx context.Context, userID, product string) (string, error) {
	return "", f.err
}

type fakeTxReader struct {
	txs    []models.Transaction
	err    error
	gotUID string
	gotQ   dto.TransactionQuery
}

func (f *fakeTxReader) Get(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, error) {
	f.gotUID = uid
	f.gotQ = q
	return f.txs, f.err
}

type fakeClassifierSvc struct {
	result dto.ClassifyResult
	err    error
}

func (f *fakeClassifierSvc) ClassifyPending(ctx context.Context) (dto.ClassifyResult, error) {
	return f.result, f.err
}

type fakePointsSvc struct {
	points int
	result dto.PointsResult
	err    error
}

func (f *fakePointsSvc) Calculate(ctx context.Context, uid, txID, cardID string) (int, error) {
	return f.points, f.err
}
func (f *fakePointsSvc) RecalculateAll(ctx context.Context, uid string) (dto.PointsResult, error) {
	return f.result, f.err
}

// helper to build handler
func newTestTransactionHandler(s *fakeSyncSvc, txs *fakeTxReader) *transactionHandlers {
	log := slog.New(slog.NewTextHandler(testDiscard{}, nil))
	deps := &Deps{
		ResponseHandler: response.New(log),
		SyncSvc:         s,
		TxReader:        txs,
		ClassifierSvc:   &fakeClassifierSvc{},
		PointsSvc:       &fakePointsSvc{},
	}
	return NewTransactionHandlers(deps)
}

func TestSyncHandler(t *testing.T) {
	svc := &fakeSyncSvc{result: dto.SyncResult{
		Transactions: []models.Transaction{{ID: "t1"}},
		Saved:        1,
		Pages:        1,
	}}
	h := newTestTransactionHandler(svc, &fakeTxReader{})

	body := `{"user_id":"aman","merchant_id":19}`
	req := httptest.NewRequest(http.MethodPost, "/transactions/sync", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.Sync(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	if svc.gotSync.userID != "aman" || svc.gotSync.merchantID != 19 {
		t.Fatalf("sync called with %+v", svc.gotSync)
	}
	var resp map[string]json.RawMessage
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if string(resp["saved_to_db"]) != "1" || string(resp["pages"]) != "1" {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
}

func TestSyncHandlerMissingFields(t *testing.T) {
	h := newTestTransactionHandler(&fakeSyncSvc{}, &fakeTxReader{})

	req := httptest.NewRequest(http.MethodPost, "/transactions/sync", bytes.NewBufferString(`{"user_id":"aman"}`))
	rr := httptest.NewRecorder()

	h.Sync(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestSyncHandlerUpstreamFailure(t *testing.T) {
	svc := &fakeSyncSvc{
		result: dto.SyncResult{Saved: 100, Pages: 1},
		err:    errs.NewExternalServiceError("knot", "timeout", true),
	}
	h := newTestTransactionHandler(svc, &fakeTxReader{})

	req := httptest.NewRequest(http.MethodPost, "/transactions/sync", bytes.NewBufferString(`{"user_id":"aman","merchant_id":19}`))
	rr := httptest.NewRecorder()

	h.Sync(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("transient failure should map to 503, got %d", rr.Code)
	}
	var resp struct {
		Transactions []models.Transaction `json:"transactions"`
		SavedToDB    int                  `json:"saved_to_db"`
		Pages        int                  `json:"pages"`
		Error        string               `json:"error"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Transactions == nil || len(resp.Transactions) != 0 {
		t.Fatalf("expected empty transactions list, got %s", rr.Body.String())
	}
	if resp.SavedToDB != 100 || resp.Pages != 1 {
		t.Fatalf("partial progress not reported: %+v", resp)
	}
	if resp.Error == "" {
		t.Fatal("expected error message in body")
	}
}

func TestSyncHandlerProtocolFailureIs502(t *testing.T) {
	svc := &fakeSyncSvc{err: errs.NewExternalServiceError("knot", "returned 500", false)}
	h := newTestTransactionHandler(svc, &fakeTxReader{})

	req := httptest.NewRequest(http.MethodPost, "/transactions/sync", bytes.NewBufferString(`{"user_id":"aman","merchant_id":19}`))
	rr := httptest.NewRecorder()

	h.Sync(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("protocol failure should map to 502, got %d", rr.Code)
	}
}

func TestListHandler(t *testing.T) {
	txs := &fakeTxReader{txs: []models.Transaction{{ID: "t1"}, {ID: "t2"}}}
	h := newTestTransactionHandler(&fakeSyncSvc{}, txs)

	req := httptest.NewRequest(http.MethodGet, "/transactions?user_id=aman&merchant_id=19&limit=10", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	if txs.gotQ.MerchantID == nil || *txs.gotQ.MerchantID != 19 || txs.gotQ.Limit != 10 {
		t.Fatalf("query not parsed: %+v", txs.gotQ)
	}
	var resp dto.TransactionsResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Count != 2 {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
}

func TestListHandlerDefaultsLimit(t *testing.T) {
	txs := &fakeTxReader{}
	h := newTestTransactionHandler(&fakeSyncSvc{}, txs)

	req := httptest.NewRequest(http.MethodGet, "/transactions?user_id=aman", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	if txs.gotQ.Limit != 50 {
		t.Fatalf("limit = %d, want default 50", txs.gotQ.Limit)
	}
	if txs.gotQ.MerchantID != nil {
		t.Fatalf("merchant filter should be unset, got %v", *txs.gotQ.MerchantID)
	}
}

func TestListHandlerMissingUserID(t *testing.T) {
	h := newTestTransactionHandler(&fakeSyncSvc{}, &fakeTxReader{})

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestListHandlerDegradesOnStoreError(t *testing.T) {
	txs := &fakeTxReader{err: errors.New("firestore down")}
	h := newTestTransactionHandler(&fakeSyncSvc{}, txs)

	req := httptest.NewRequest(http.MethodGet, "/transactions?user_id=aman", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("list should degrade to 200, got %d", rr.Code)
	}
	var resp dto.TransactionsResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Transactions == nil || len(resp.Transactions) != 0 {
		t.Fatalf("expected empty list, got %s", rr.Body.String())
	}
	if resp.Error == "" {
		t.Fatal("expected error message alongside the empty list")
	}
}

// discard logger output in tests
type testDiscard struct{}

func (testDiscard) Write(p []byte) (int, error) { return len(p), nil }
