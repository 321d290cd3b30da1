// Package nessieclient wraps the Capital One Nessie sandbox API, used
// for account and deposit (income) data. Authentication is a key query
// parameter on every request.
package nessieclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amankv/dime-backend/internal/errs"
)

type Account struct {
	ID       string  `json:"_id"`
	Type     string  `json:"type"`
	Nickname string  `json:"nickname"`
	Balance  float64 `json:"balance"`
}

type Deposit struct {
	ID              string  `json:"_id"`
	TransactionDate string  `json:"transaction_date"`
	Amount          float64 `json:"amount"`
	Status          string  `json:"status"`
	Description     string  `json:"description"`
}

type Adapter struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewAdapter(baseURL, apiKey string) *Adapter {
	return &Adapter{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Configured reports whether an API key is set. Callers fall back to
// sample data when it is not.
func (a *Adapter) Configured() bool {
	return a.apiKey != ""
}

func (a *Adapter) Accounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := a.get(ctx, "/accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (a *Adapter) Deposits(ctx context.Context, accountID string) ([]Deposit, error) {
	var deposits []Deposit
	if err := a.get(ctx, "/accounts/"+url.PathEscape(accountID)+"/deposits", &deposits); err != nil {
		return nil, err
	}
	return deposits, nil
}

func (a *Adapter) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?key="+url.QueryEscape(a.apiKey), nil)
	if err != nil {
		return err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return errs.NewExternalServiceError("nessie", err.Error(), true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.NewExternalServiceError("nessie", err.Error(), true)
	}
	if resp.StatusCode != http.StatusOK {
		return errs.NewExternalServiceError("nessie", fmt.Sprintf("%s returned %d", path, resp.StatusCode), false)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errs.NewExternalServiceError("nessie", fmt.Sprintf("malformed response from %s: %v", path, err), false)
	}
	return nil
}
