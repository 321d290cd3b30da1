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

type CardService interface {
	AddCard(ctx context.Context, req dto.AddCardRequest) (dto.CardView, error)
	ListCards(ctx context.Context, uid string) ([]dto.CardView, error)
	DeleteCard(ctx context.Context, uid, cardID string) error
	OptimalCard(ctx context.Context, uid, category string) (dto.CardRecommendation, error)
}

type cardHandlers struct {
	ResponseHandler response.ResponseHandler
	CardSvc         CardService
}

func NewCardHandlers(deps *Deps) *cardHandlers {
	return &cardHandlers{
		ResponseHandler: deps.ResponseHandler,
		CardSvc:         deps.CardSvc,
	}
}

func (h *cardHandlers) Register(r chi.Router) {
	r.Route("/cards", func(r chi.Router) {
		r.Post("/", h.Add)
		r.Get("/", h.List)
		r.Delete("/{cardId}", h.Delete)
	})
	r.Post("/optimal-card", h.Optimal)
}

func (h *cardHandlers) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if req.UserID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}

	card, err := h.CardSvc.AddCard(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusCreated, map[string]any{
		"message": "Card added successfully",
		"card":    card,
	})
}

func (h *cardHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}

	cards, err := h.CardSvc.ListCards(r.Context(), userID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, dto.CardsResponse{
		Cards: cards,
		Count: len(cards),
	})
}

func (h *cardHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}
	cardID := chi.URLParam(r, "cardId")

	if err := h.CardSvc.DeleteCard(r.Context(), userID, cardID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, map[string]string{"deleted": cardID})
}

func (h *cardHandlers) Optimal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID   string `json:"user_id"`
		Category string `json:"category"`
		Merchant string `json:"merchant,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if body.UserID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}

	rec, err := h.CardSvc.OptimalCard(r.Context(), body.UserID, body.Category)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, map[string]any{
		"recommendation": rec,
		"merchant":       body.Merchant,
		"category":       rec.Category,
	})
}
