// Package knotclient talks to the Knot transaction-link API. Knot has no
// Go SDK, so the wire types are declared here.
package knotclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/models"
)

const pageSize = 100

type Adapter struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

func NewAdapter(baseURL, clientID, secret string) *Adapter {
	return &Adapter{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		secret:     secret,
	}
}

type syncRequest struct {
	ExternalUserID string `json:"external_user_id"`
	MerchantID     int    `json:"merchant_id"`
	Limit          int    `json:"limit"`
	Cursor         string `json:"cursor,omitempty"`
}

type syncResponse struct {
	Transactions []json.RawMessage `json:"transactions"`
	NextCursor   string            `json:"next_cursor"`
}

// SyncPage fetches one page of transactions for a merchant. An empty
// cursor asks for the first page; HasMore is false once the upstream
// stops returning a cursor.
func (a *Adapter) SyncPage(ctx context.Context, userID string, merchantID int, merchantName, cursor string) (dto.KnotSyncPage, error) {
	var page dto.KnotSyncPage

	body := syncRequest{
		ExternalUserID: userID,
		MerchantID:     merchantID,
		Limit:          pageSize,
		Cursor:         cursor,
	}

	var resp syncResponse
	if err := a.post(ctx, "/transactions/sync", body, &resp); err != nil {
		return page, err
	}

	txs := make([]models.Transaction, 0, len(resp.Transactions))
	for _, raw := range resp.Transactions {
		tx, err := ParseTransaction(raw, userID, merchantID, merchantName)
		if err != nil {
			return page, errs.NewExternalServiceError("knot", fmt.Sprintf("malformed transaction: %v", err), false)
		}
		txs = append(txs, tx)
	}

	page.Transactions = txs
	page.Cursor = resp.NextCursor
	page.HasMore = resp.NextCursor != ""
	return page, nil
}

type sessionRequest struct {
	Type           string `json:"type"`
	ExternalUserID string `json:"external_user_id"`
}

type sessionResponse struct {
	Session string `json:"session"`
}

// CreateSession creates a session for the frontend SDK.
func (a *Adapter) CreateSession(ctx context.Context, userID, product string) (string, error) {
	if product == "" {
		product = "transaction_link"
	}
	var resp sessionResponse
	if err := a.post(ctx, "/session/create", sessionRequest{Type: product, ExternalUserID: userID}, &resp); err != nil {
		return "", err
	}
	return resp.Session, nil
}

func (a *Adapter) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(a.clientID, a.secret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return errs.NewExternalServiceError("knot", err.Error(), true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.NewExternalServiceError("knot", err.Error(), true)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errs.NewExternalServiceError("knot", fmt.Sprintf("%s returned %d: %s", path, resp.StatusCode, truncate(raw, 200)), false)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errs.NewExternalServiceError("knot", fmt.Sprintf("malformed response from %s: %v", path, err), false)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
