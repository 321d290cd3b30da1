package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/response"
)

type AdminService interface {
	Setup(ctx context.Context) (int, error)
	Reset(ctx context.Context, uid string) (dto.ResetResult, error)
}

type adminHandlers struct {
	ResponseHandler response.ResponseHandler
	AdminSvc        AdminService
}

func NewAdminHandlers(deps *Deps) *adminHandlers {
	return &adminHandlers{
		ResponseHandler: deps.ResponseHandler,
		AdminSvc:        deps.AdminSvc,
	}
}

func (h *adminHandlers) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/setup", h.Setup)
		r.Post("/reset", h.Reset)
	})
}

func (h *adminHandlers) Setup(w http.ResponseWriter, r *http.Request) {
	seeded, err := h.AdminSvc.Setup(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, map[string]int{"seeded": seeded})
}

func (h *adminHandlers) Reset(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.AdminSvc.Reset(r.Context(), body.UserID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, result)
}
