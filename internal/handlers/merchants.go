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
)

type MerchantService interface {
	Connect(ctx context.Context, req dto.ConnectMerchantRequest) error
	List(ctx context.Context, uid string) ([]models.Merchant, error)
	SetTopOfFilePayment(ctx context.Context, uid string, merchantID int, payment string) error
	Disconnect(ctx context.Context, uid string, merchantID int) error
}

type merchantHandlers struct {
	ResponseHandler response.ResponseHandler
	MerchantSvc     MerchantService
}

func NewMerchantHandlers(deps *Deps) *merchantHandlers {
	return &merchantHandlers{
		ResponseHandler: deps.ResponseHandler,
		MerchantSvc:     deps.MerchantSvc,
	}
}

func (h *merchantHandlers) Register(r chi.Router) {
	r.Route("/merchants", func(r chi.Router) {
		r.Post("/", h.Connect)
		r.Get("/", h.List)
		r.Put("/{merchantId}/payment", h.UpdatePayment)
		r.Delete("/{merchantId}", h.Disconnect)
	})
	r.Get("/top-of-file", h.TopOfFile)
}

func (h *merchantHandlers) Connect(w http.ResponseWriter, r *http.Request) {
	var req dto.ConnectMerchantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if req.UserID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}

	if err := h.MerchantSvc.Connect(r.Context(), req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusCreated, map[string]any{
		"merchant_id": req.MerchantID,
		"connected":   true,
	})
}

func (h *merchantHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}

	merchants, err := h.MerchantSvc.List(r.Context(), userID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, dto.MerchantsResponse{
		Merchants: merchants,
		Count:     len(merchants),
	})
}

// TopOfFile returns each connected merchant's preferred payment
// method. Degrades to an empty list so the dashboard keeps rendering
// when the store is down.
func (h *merchantHandlers) TopOfFile(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}

	merchants, err := h.MerchantSvc.List(r.Context(), userID)
	if err != nil {
		h.ResponseHandler.WriteJSON(w, r, http.StatusOK, dto.TopOfFileResponse{
			Data:  []dto.TopOfFileEntry{},
			Error: err.Error(),
		})
		return
	}

	entries := make([]dto.TopOfFileEntry, 0, len(merchants))
	for _, m := range merchants {
		entries = append(entries, dto.TopOfFileEntry{
			MerchantID: m.MerchantID,
			Merchant:   m.Name,
			Payment:    m.TopOfFilePayment,
		})
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, dto.TopOfFileResponse{Data: entries})
}

func (h *merchantHandlers) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	merchantID, err := merchantIDParam(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	var req dto.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if req.UserID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}

	if err := h.MerchantSvc.SetTopOfFilePayment(r.Context(), req.UserID, merchantID, req.Payment); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, map[string]any{
		"merchant_id":         merchantID,
		"top_of_file_payment": req.Payment,
	})
}

func (h *merchantHandlers) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}
	merchantID, err := merchantIDParam(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	if err := h.MerchantSvc.Disconnect(r.Context(), userID, merchantID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, map[string]any{"deleted": merchantID})
}

func merchantIDParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "merchantId"))
	if err != nil {
		return 0, errs.NewValidationError("merchant id must be an integer")
	}
	return id, nil
}
