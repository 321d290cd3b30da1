package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/internal/response"
	"github.com/amankv/dime-backend/pkg/helpers"
	"github.com/amankv/dime-backend/pkg/logger"
)

type SyncService interface {
	SyncMerchant(ctx context.Context, userID string, merchantID int, merchantName, cursor string) (dto.SyncResult, error)
	SyncAll(ctx context.Context, userID string) (dto.SyncAllResult, error)
	IngestWebhook(ctx context.Context, payload dto.KnotWebhook) (int, error)
	CreateSession(ctx context.Context, userID, product string) (string, error)
}

type TransactionReader interface {
	Get(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, error)
}

type ClassifierService interface {
	ClassifyPending(ctx context.Context) (dto.ClassifyResult, error)
}

type PointsService interface {
	Calculate(ctx context.Context, uid, txID, cardID string) (int, error)
	RecalculateAll(ctx context.Context, uid string) (dto.PointsResult, error)
}

type transactionHandlers struct {
	ResponseHandler response.ResponseHandler
	SyncSvc         SyncService
	TxReader        TransactionReader
	ClassifierSvc   ClassifierService
	PointsSvc       PointsService
}

func NewTransactionHandlers(deps *Deps) *transactionHandlers {
	return &transactionHandlers{
		ResponseHandler: deps.ResponseHandler,
		SyncSvc:         deps.SyncSvc,
		TxReader:        deps.TxReader,
		ClassifierSvc:   deps.ClassifierSvc,
		PointsSvc:       deps.PointsSvc,
	}
}

func (h *transactionHandlers) Register(r chi.Router) {
	r.Post("/transactions/sync", h.Sync)
	r.Get("/transactions", h.List)
	r.Post("/transactions", h.List)
	r.Post("/transactions/{id}/points", h.CalculatePoints)
	r.Post("/classify", h.Classify)
	r.Post("/points/recalculate", h.RecalculatePoints)
}

func (h *transactionHandlers) Sync(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID       string `json:"user_id"`
		MerchantID   int    `json:"merchant_id"`
		MerchantName string `json:"merchant_name,omitempty"`
		Cursor       string `json:"cursor,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if body.UserID == "" || body.MerchantID == 0 {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id and merchant_id are required"))
		return
	}

	result, err := h.SyncSvc.SyncMerchant(r.Context(), body.UserID, body.MerchantID, body.MerchantName, body.Cursor)
	if err != nil {
		// Pages persisted before the failure stay saved; the client gets
		// the error with an empty list and can re-sync.
		status := http.StatusBadGateway
		if svcErr, ok := err.(*errs.ExternalServiceError); ok && svcErr.Transient {
			status = http.StatusServiceUnavailable
		}
		logger.FromContext(r.Context()).Warn("sync failed",
			"merchant_id", body.MerchantID, "pages", result.Pages, "error", err)
		h.ResponseHandler.WriteJSON(w, r, status, dto.SyncResponse{
			Transactions: []models.Transaction{},
			SavedToDB:    result.Saved,
			Pages:        result.Pages,
			Error:        err.Error(),
		})
		return
	}

	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, dto.SyncResponse{
		Transactions: result.Transactions,
		SavedToDB:    result.Saved,
		Pages:        result.Pages,
	})
}

func (h *transactionHandlers) List(w http.ResponseWriter, r *http.Request) {
	q, userID, err := parseTransactionQuery(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	txs, err := h.TxReader.Get(r.Context(), userID, q)
	if err != nil {
		// The dashboard prefers an empty list over a broken page.
		logger.FromContext(r.Context()).Error("transaction list failed", "error", err)
		h.ResponseHandler.WriteJSON(w, r, http.StatusOK, dto.TransactionsResponse{
			Transactions: []models.Transaction{},
			Error:        "failed to load transactions",
		})
		return
	}

	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, dto.TransactionsResponse{
		Transactions: txs,
		Count:        len(txs),
	})
}

func parseTransactionQuery(r *http.Request) (dto.TransactionQuery, string, error) {
	var q dto.TransactionQuery

	var params struct {
		UserID     string `json:"user_id"`
		MerchantID *int   `json:"merchant_id"`
		CardID     string `json:"card_id"`
		CardType   string `json:"card_type"`
		Limit      *int   `json:"limit"`
	}

	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			return q, "", errs.NewValidationError("invalid request body")
		}
	} else {
		values := r.URL.Query()
		params.UserID = values.Get("user_id")
		params.CardID = values.Get("card_id")
		params.CardType = values.Get("card_type")
		if raw := values.Get("merchant_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return q, "", errs.NewValidationError("merchant_id must be an integer")
			}
			params.MerchantID = helpers.Ptr(id)
		}
		if raw := values.Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				return q, "", errs.NewValidationError("limit must be an integer")
			}
			params.Limit = helpers.Ptr(limit)
		}
	}

	if params.UserID == "" {
		return q, "", errs.NewValidationError("user_id is required")
	}

	q.MerchantID = params.MerchantID
	q.CardID = params.CardID
	q.CardType = params.CardType
	q.Limit = helpers.ValueOr(params.Limit, 50)
	return q, params.UserID, nil
}

func (h *transactionHandlers) Classify(w http.ResponseWriter, r *http.Request) {
	result, err := h.ClassifierSvc.ClassifyPending(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, result)
}

func (h *transactionHandlers) CalculatePoints(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "id")

	var body struct {
		UserID string `json:"user_id"`
		CardID string `json:"card_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if body.UserID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}

	points, err := h.PointsSvc.Calculate(r.Context(), body.UserID, txID, body.CardID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, map[string]any{
		"id":            txID,
		"points_earned": points,
	})
}

func (h *transactionHandlers) RecalculatePoints(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if body.UserID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}

	result, err := h.PointsSvc.RecalculateAll(r.Context(), body.UserID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, result)
}
