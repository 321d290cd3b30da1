package services

import (
	"context"
	"encoding/json"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/pkg/logger"
)

// maxSyncPages bounds a single sync run (20 pages of 100 records).
const maxSyncPages = 20

// Merchants every new user starts with before any explicit connection.
var fallbackMerchants = []models.Merchant{
	{MerchantID: 19, Name: "DoorDash"},
	{MerchantID: 44, Name: "Amazon"},
}

// --- Dependencies (minimal interfaces scoped to this service) ---

type knotSyncClient interface {
	SyncPage(ctx context.Context, userID string, merchantID int, merchantName, cursor string) (dto.KnotSyncPage, error)
	CreateSession(ctx context.Context, userID, product string) (string, error)
}

type syncTransactionStore interface {
	SaveBatch(ctx context.Context, uid string, txs []models.Transaction) (int, error)
}

type syncMerchantStore interface {
	List(ctx context.Context, uid string) ([]models.Merchant, error)
	TouchLastTransaction(ctx context.Context, uid string, merchantID int) error
	UpdatePayment(ctx context.Context, uid string, merchantID int, payment string) error
}

type transactionParser func(raw json.RawMessage, userID string, merchantID int, merchantName string) (models.Transaction, error)

type alertNotifier interface {
	TransactionAlert(ctx context.Context, merchant string, amount float64)
}

type syncService struct {
	knot      knotSyncClient
	txs       syncTransactionStore
	merchants syncMerchantStore
	parse     transactionParser
	notifier  alertNotifier
}

func NewSyncService(knot knotSyncClient, txs syncTransactionStore, merchants syncMerchantStore, parse transactionParser, notifier alertNotifier) *syncService {
	return &syncService{
		knot:      knot,
		txs:       txs,
		merchants: merchants,
		parse:     parse,
		notifier:  notifier,
	}
}

func (s *syncService) CreateSession(ctx context.Context, userID, product string) (string, error) {
	return s.knot.CreateSession(ctx, userID, product)
}

// SyncMerchant pulls pages for one merchant until the upstream stops
// returning a cursor or the page cap is hit. Each page is persisted
// before the next fetch, so an upstream failure mid-run still leaves
// earlier pages saved; the partial result is returned alongside the
// error.
func (s *syncService) SyncMerchant(ctx context.Context, userID string, merchantID int, merchantName, cursor string) (dto.SyncResult, error) {
	result := dto.SyncResult{Transactions: []models.Transaction{}}
	log := logger.FromContext(ctx)
	log.Info("merchant sync started", "merchant_id", merchantID, "merchant", merchantName)

	hasMore := true
	for hasMore && result.Pages < maxSyncPages {
		page, err := s.knot.SyncPage(ctx, userID, merchantID, merchantName, cursor)
		if err != nil {
			log.Warn("merchant sync aborted", "merchant_id", merchantID, "pages", result.Pages)
			return result, err
		}
		result.Pages++

		if len(page.Transactions) > 0 {
			saved, err := s.txs.SaveBatch(ctx, userID, page.Transactions)
			if err != nil {
				return result, err
			}
			result.Saved += saved
			result.Transactions = append(result.Transactions, page.Transactions...)
		}

		cursor = page.Cursor
		hasMore = page.HasMore
	}

	if len(result.Transactions) > 0 {
		if err := s.merchants.TouchLastTransaction(ctx, userID, merchantID); err != nil {
			log.Warn("failed to bump merchant activity", "merchant_id", merchantID, "error", err)
		}
	}

	log.Info("merchant sync completed",
		"merchant_id", merchantID,
		"pages", result.Pages,
		"saved", result.Saved)
	return result, nil
}

// SyncAll runs a sequential sweep over every connected merchant. With no
// merchants connected yet it bootstraps from the fallback list. Per
// merchant failures are recorded in the result, never fatal to the sweep.
func (s *syncService) SyncAll(ctx context.Context, userID string) (dto.SyncAllResult, error) {
	result := dto.SyncAllResult{Merchants: []dto.MerchantSyncDetail{}}

	merchants, err := s.merchants.List(ctx, userID)
	if err != nil {
		return result, err
	}
	if len(merchants) == 0 {
		merchants = fallbackMerchants
	}

	for _, m := range merchants {
		detail := dto.MerchantSyncDetail{MerchantID: m.MerchantID, Merchant: m.Name}

		synced, err := s.SyncMerchant(ctx, userID, m.MerchantID, m.Name, "")
		if err != nil {
			detail.Error = err.Error()
		}
		detail.Synced = synced.Saved
		result.TotalSynced += synced.Saved
		result.Merchants = append(result.Merchants, detail)
	}

	return result, nil
}

// IngestWebhook persists transactions pushed by the upstream. Unknown
// event types are ignored. Malformed records are skipped individually.
func (s *syncService) IngestWebhook(ctx context.Context, payload dto.KnotWebhook) (int, error) {
	if payload.EventType != "TRANSACTIONS_UPDATED" {
		return 0, nil
	}

	log := logger.FromContext(ctx)
	userID := payload.UserID
	if userID == "" {
		userID = "webhook_user"
	}

	txs := make([]models.Transaction, 0, len(payload.Transactions))
	for _, raw := range payload.Transactions {
		t, err := s.parse(raw, userID, 0, "Unknown")
		if err != nil {
			log.Warn("skipping malformed webhook transaction", "error", err)
			continue
		}
		txs = append(txs, t)
	}
	if len(txs) == 0 {
		return 0, nil
	}

	saved, err := s.txs.SaveBatch(ctx, userID, txs)
	if err != nil {
		return 0, err
	}

	// A delivery carrying a payment method refreshes the merchant's
	// top-of-file payment along with the activity bump.
	touched := map[int]bool{}
	for _, t := range txs {
		if t.MerchantID == 0 || touched[t.MerchantID] {
			continue
		}
		touched[t.MerchantID] = true
		if t.PaymentMethod != "" {
			if err := s.merchants.UpdatePayment(ctx, userID, t.MerchantID, t.PaymentMethod); err != nil {
				log.Warn("failed to update merchant payment", "merchant_id", t.MerchantID, "error", err)
			}
			continue
		}
		if err := s.merchants.TouchLastTransaction(ctx, userID, t.MerchantID); err != nil {
			log.Warn("failed to bump merchant activity", "merchant_id", t.MerchantID, "error", err)
		}
	}

	if s.notifier != nil {
		s.notifier.TransactionAlert(ctx, txs[0].MerchantName, txs[0].TotalAmount)
	}

	log.Info("webhook ingested", "saved", saved, "received", len(payload.Transactions))
	return saved, nil
}
