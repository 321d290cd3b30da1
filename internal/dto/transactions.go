package dto

import "github.com/amankv/dime-backend/internal/models"

// TransactionQuery filters a transaction listing. Zero values mean no
// filter on that field.
type TransactionQuery struct {
	MerchantID *int
	CardID     string
	CardType   string
	DateFrom   string
	Limit      int
}

// SyncResponse is returned by the merchant sync endpoint. On failure
// Transactions is an empty slice, never null.
type SyncResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	SavedToDB    int                  `json:"saved_to_db"`
	Pages        int                  `json:"pages"`
	Error        string               `json:"error,omitempty"`
}

type TransactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Count        int                  `json:"count"`
	Error        string               `json:"error,omitempty"`
}
