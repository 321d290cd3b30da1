package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/pkg/helpers"
)

// --- fakes ---

type fakeKnot struct {
	pages      []dto.KnotSyncPage
	syncErr    error
	errOnCall  int // 1-based call number that fails; 0 means never
	syncCalls  int
	sessionID  string
	sessionErr error
}

func (f *fakeKnot) SyncPage(ctx context.Context, userID string, merchantID int, merchantName, cursor string) (dto.KnotSyncPage, error) {
	f.syncCalls++
	if f.syncErr != nil && (f.errOnCall == 0 || f.syncCalls == f.errOnCall) {
		return dto.KnotSyncPage{}, f.syncErr
	}
	if f.syncCalls > len(f.pages) {
		return dto.KnotSyncPage{}, nil
	}
	return f.pages[f.syncCalls-1], nil
}

func (f *fakeKnot) CreateSession(ctx context.Context, userID, product string) (string, error) {
	return f.sessionID, f.sessionErr
}

type fakeSyncTxStore struct {
	batches   [][]models.Transaction
	saveErr   error
	errOnCall int
	saveCalls int
}

func (f *fakeSyncTxStore) SaveBatch(ctx context.Context, uid string, txs []models.Transaction) (int, error) {
	f.saveCalls++
	if f.saveErr != nil && (f.errOnCall == 0 || f.saveCalls == f.errOnCall) {
		return 0, f.saveErr
	}
	f.batches = append(f.batches, txs)
	return len(txs), nil
}

type fakeSyncMerchantStore struct {
	list     []models.Merchant
	listErr  error
	touched  []int
	payments map[int]string
}

func (f *fakeSyncMerchantStore) List(ctx context.Context, uid string) ([]models.Merchant, error) {
	return f.list, f.listErr
}

func (f *fakeSyncMerchantStore) TouchLastTransaction(ctx context.Context, uid string, merchantID int) error {
	f.touched = append(f.touched, merchantID)
	return nil
}

func (f *fakeSyncMerchantStore) UpdatePayment(ctx context.Context, uid string, merchantID int, payment string) error {
	if f.payments == nil {
		f.payments = map[int]string{}
	}
	f.payments[merchantID] = payment
	return nil
}

type fakeNotifier struct {
	alerts []string
}

func (f *fakeNotifier) TransactionAlert(ctx context.Context, merchant string, amount float64) {
	f.alerts = append(f.alerts, fmt.Sprintf("%s:%.2f", merchant, amount))
}

func genTxs(n int, prefix string) []models.Transaction {
	txs := make([]models.Transaction, n)
	for i := range txs {
		txs[i] = models.Transaction{ID: fmt.Sprintf("%s-%d", prefix, i), TotalAmount: 10}
	}
	return txs
}

func passthroughParser(raw json.RawMessage, userID string, merchantID int, merchantName string) (models.Transaction, error) {
	var t models.Transaction
	if err := json.Unmarshal(raw, &t); err != nil {
		return t, err
	}
	t.UserID = userID
	if t.MerchantID == 0 {
		t.MerchantID = merchantID
	}
	return t, nil
}

// --- tests ---

func TestSyncMerchantTwoPages(t *testing.T) {
	knot := &fakeKnot{
		pages: []dto.KnotSyncPage{
			{Transactions: genTxs(100, "p1"), Cursor: "c1", HasMore: true},
			{Transactions: genTxs(30, "p2")},
		},
	}
	txs := &fakeSyncTxStore{}
	merchants := &fakeSyncMerchantStore{}

	svc := NewSyncService(knot, txs, merchants, passthroughParser, nil)
	result, err := svc.SyncMerchant(helpers.TestCtx(), "aman", 44, "Amazon", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", result.Pages)
	}
	if result.Saved != 130 {
		t.Fatalf("expected 130 saved, got %d", result.Saved)
	}
	if len(result.Transactions) != 130 {
		t.Fatalf("expected 130 transactions returned, got %d", len(result.Transactions))
	}
	if len(merchants.touched) != 1 || merchants.touched[0] != 44 {
		t.Fatalf("expected merchant 44 touched, got %v", merchants.touched)
	}
}

func TestSyncMerchantPageCap(t *testing.T) {
	pages := make([]dto.KnotSyncPage, 50)
	for i := range pages {
		pages[i] = dto.KnotSyncPage{Transactions: genTxs(100, fmt.Sprintf("p%d", i)), Cursor: "more", HasMore: true}
	}
	knot := &fakeKnot{pages: pages}
	txs := &fakeSyncTxStore{}

	svc := NewSyncService(knot, txs, &fakeSyncMerchantStore{}, passthroughParser, nil)
	result, err := svc.SyncMerchant(helpers.TestCtx(), "aman", 19, "DoorDash", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Pages != maxSyncPages {
		t.Fatalf("expected page cap %d, got %d", maxSyncPages, result.Pages)
	}
	if result.Saved != maxSyncPages*100 {
		t.Fatalf("expected %d saved, got %d", maxSyncPages*100, result.Saved)
	}
}

func TestSyncMerchantPartialFailureKeepsSavedPages(t *testing.T) {
	knot := &fakeKnot{
		pages: []dto.KnotSyncPage{
			{Transactions: genTxs(100, "p1"), Cursor: "c1", HasMore: true},
		},
		syncErr:   errors.New("upstream down"),
		errOnCall: 2,
	}
	txs := &fakeSyncTxStore{}

	svc := NewSyncService(knot, txs, &fakeSyncMerchantStore{}, passthroughParser, nil)
	result, err := svc.SyncMerchant(helpers.TestCtx(), "aman", 44, "Amazon", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Pages != 1 || result.Saved != 100 {
		t.Fatalf("expected partial result of 1 page / 100 saved, got %d / %d", result.Pages, result.Saved)
	}
	if len(txs.batches) != 1 {
		t.Fatalf("expected first page persisted, got %d batches", len(txs.batches))
	}
}

func TestSyncAllFallsBackToDefaultMerchants(t *testing.T) {
	knot := &fakeKnot{
		pages: []dto.KnotSyncPage{{Transactions: genTxs(5, "a")}},
	}
	txs := &fakeSyncTxStore{}
	merchants := &fakeSyncMerchantStore{}

	svc := NewSyncService(knot, txs, merchants, passthroughParser, nil)
	result, err := svc.SyncAll(helpers.TestCtx(), "aman")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Merchants) != 2 {
		t.Fatalf("expected 2 fallback merchants, got %d", len(result.Merchants))
	}
	if result.Merchants[0].MerchantID != 19 || result.Merchants[1].MerchantID != 44 {
		t.Fatalf("unexpected merchant ids: %+v", result.Merchants)
	}
}

func TestSyncAllRecordsPerMerchantErrors(t *testing.T) {
	knot := &fakeKnot{syncErr: errors.New("upstream down")}
	txs := &fakeSyncTxStore{}
	merchants := &fakeSyncMerchantStore{
		list: []models.Merchant{{MerchantID: 19, Name: "DoorDash"}, {MerchantID: 44, Name: "Amazon"}},
	}

	svc := NewSyncService(knot, txs, merchants, passthroughParser, nil)
	result, err := svc.SyncAll(helpers.TestCtx(), "aman")
	if err != nil {
		t.Fatalf("sweep should not fail on per-merchant errors: %v", err)
	}
	for _, detail := range result.Merchants {
		if detail.Error == "" {
			t.Fatalf("expected error recorded for merchant %d", detail.MerchantID)
		}
	}
	if result.TotalSynced != 0 {
		t.Fatalf("expected 0 synced, got %d", result.TotalSynced)
	}
}

func TestIngestWebhookIgnoresOtherEvents(t *testing.T) {
	txs := &fakeSyncTxStore{}
	svc := NewSyncService(&fakeKnot{}, txs, &fakeSyncMerchantStore{}, passthroughParser, nil)

	saved, err := svc.IngestWebhook(helpers.TestCtx(), dto.KnotWebhook{EventType: "MERCHANT_LINKED"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != 0 || len(txs.batches) != 0 {
		t.Fatalf("expected no writes for unknown event, got %d saved", saved)
	}
}

func TestIngestWebhookSavesAndNotifies(t *testing.T) {
	txs := &fakeSyncTxStore{}
	merchants := &fakeSyncMerchantStore{}
	notifier := &fakeNotifier{}
	svc := NewSyncService(&fakeKnot{}, txs, merchants, passthroughParser, notifier)

	payload := dto.KnotWebhook{
		EventType: "TRANSACTIONS_UPDATED",
		UserID:    "aman",
		Transactions: []json.RawMessage{
			json.RawMessage(`{"id":"w1","merchant_id":19,"merchant_name":"DoorDash","total_amount":23.5}`),
			json.RawMessage(`not json`),
		},
	}
	saved, err := svc.IngestWebhook(helpers.TestCtx(), payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != 1 {
		t.Fatalf("expected 1 saved after skipping the malformed record, got %d", saved)
	}
	if len(notifier.alerts) != 1 {
		t.Fatalf("expected one alert, got %v", notifier.alerts)
	}
	if len(merchants.touched) != 1 || merchants.touched[0] != 19 {
		t.Fatalf("expected merchant 19 touched, got %v", merchants.touched)
	}
}

func TestIngestWebhookUpdatesMerchantPayment(t *testing.T) {
	txs := &fakeSyncTxStore{}
	merchants := &fakeSyncMerchantStore{}
	svc := NewSyncService(&fakeKnot{}, txs, merchants, passthroughParser, nil)

	payload := dto.KnotWebhook{
		EventType: "TRANSACTIONS_UPDATED",
		UserID:    "aman",
		Transactions: []json.RawMessage{
			json.RawMessage(`{"id":"w2","merchant_id":19,"merchant_name":"DoorDash","total_amount":12.0,"payment_method":"VISA"}`),
		},
	}
	if _, err := svc.IngestWebhook(helpers.TestCtx(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merchants.payments[19] != "VISA" {
		t.Fatalf("expected merchant 19 payment VISA, got %v", merchants.payments)
	}
	// The payment write already bumps activity; no separate touch.
	if len(merchants.touched) != 0 {
		t.Fatalf("expected no separate touch, got %v", merchants.touched)
	}
}
