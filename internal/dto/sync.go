package dto

import "github.com/amankv/dime-backend/internal/models"

// SyncResult reports one merchant sync run.
type SyncResult struct {
	Transactions []models.Transaction
	Saved        int
	Pages        int
}

// MerchantSyncDetail is the per-merchant entry in a sync-all run.
type MerchantSyncDetail struct {
	MerchantID int    `json:"merchant_id"`
	Merchant   string `json:"merchant"`
	Synced     int    `json:"synced"`
	Error      string `json:"error,omitempty"`
}

type SyncAllResult struct {
	TotalSynced int                  `json:"total_synced"`
	Merchants   []MerchantSyncDetail `json:"merchants"`
}
