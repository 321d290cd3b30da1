package dto

import (
	"encoding/json"

	"github.com/amankv/dime-backend/internal/models"
)

// KnotSyncPage is one page of results from the upstream transaction sync.
type KnotSyncPage struct {
	Transactions []models.Transaction
	Cursor       string
	HasMore      bool
}

// KnotWebhook is the payload Knot posts when new transactions are
// available. Transactions stay raw until the client normalizes them.
type KnotWebhook struct {
	EventType    string            `json:"event_type"`
	UserID       string            `json:"user_id"`
	Transactions []json.RawMessage `json:"transactions"`
}

// KnotSessionRequest asks for a client session used by the frontend SDK.
type KnotSessionRequest struct {
	UserID  string `json:"user_id"`
	Product string `json:"product,omitempty"`
}

type KnotSessionResponse struct {
	SessionID string `json:"session_id"`
}
