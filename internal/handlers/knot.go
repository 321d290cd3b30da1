package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/internal/response"
)

type knotHandlers struct {
	ResponseHandler response.ResponseHandler
	SyncSvc         SyncService
	TxReader        TransactionReader
}

func NewKnotHandlers(deps *Deps) *knotHandlers {
	return &knotHandlers{
		ResponseHandler: deps.ResponseHandler,
		SyncSvc:         deps.SyncSvc,
		TxReader:        deps.TxReader,
	}
}

func (h *knotHandlers) Register(r chi.Router) {
	r.Route("/knot", func(r chi.Router) {
		r.Post("/session", h.CreateSession)
		r.Post("/sync-all", h.SyncAll)
		r.Post("/webhook", h.Webhook)
		r.Get("/webhook", h.WebhookTransactions)
	})
}

func (h *knotHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req dto.KnotSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if req.UserID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}

	sessionID, err := h.SyncSvc.CreateSession(r.Context(), req.UserID, req.Product)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, dto.KnotSessionResponse{SessionID: sessionID})
}

func (h *knotHandlers) SyncAll(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.SyncSvc.SyncAll(r.Context(), body.UserID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, result)
}

// Webhook always acknowledges with 200 when the payload parses; the
// upstream retries on anything else and duplicate deliveries are
// already harmless thanks to upsert semantics.
func (h *knotHandlers) Webhook(w http.ResponseWriter, r *http.Request) {
	var payload dto.KnotWebhook
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid webhook payload"))
		return
	}

	saved, err := h.SyncSvc.IngestWebhook(r.Context(), payload)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, map[string]any{
		"received": true,
		"saved":    saved,
	})
}

// WebhookTransactions lists what recent webhook deliveries ingested.
// Deliveries without a user_id land under "webhook_user".
func (h *knotHandlers) WebhookTransactions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "webhook_user"
	}

	txs, err := h.TxReader.Get(r.Context(), userID, dto.TransactionQuery{Limit: 20})
	if err != nil {
		h.ResponseHandler.WriteJSON(w, r, http.StatusOK, dto.TransactionsResponse{
			Transactions: []models.Transaction{},
			Error:        err.Error(),
		})
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, dto.TransactionsResponse{
		Transactions: txs,
		Count:        len(txs),
	})
}
