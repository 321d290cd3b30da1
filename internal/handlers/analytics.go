package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/response"
)

type CashflowService interface {
	Aggregate(ctx context.Context, uid string, days int) (dto.CashflowResult, error)
}

type IncomeService interface {
	Trends(ctx context.Context, accountID string, months int) (dto.IncomeTrends, error)
}

type analyticsHandlers struct {
	ResponseHandler response.ResponseHandler
	CashflowSvc     CashflowService
	IncomeSvc       IncomeService
}

func NewAnalyticsHandlers(deps *Deps) *analyticsHandlers {
	return &analyticsHandlers{
		ResponseHandler: deps.ResponseHandler,
		CashflowSvc:     deps.CashflowSvc,
		IncomeSvc:       deps.IncomeSvc,
	}
}

func (h *analyticsHandlers) Register(r chi.Router) {
	r.Get("/cashflow", h.Cashflow)
	r.Get("/income-trends", h.IncomeTrends)
	r.Post("/income-trends", h.IncomeTrends)
	r.Get("/alerts", h.Alerts)
}

func (h *analyticsHandlers) Cashflow(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("user_id is required"))
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("days must be a positive integer"))
			return
		}
		days = parsed
	}

	result, err := h.CashflowSvc.Aggregate(r.Context(), userID, days)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, result)
}

// IncomeTrends serves both GET (query params) and POST (JSON body).
func (h *analyticsHandlers) IncomeTrends(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	rawMonths := r.URL.Query().Get("months")
	if r.Method == http.MethodPost {
		var body struct {
			AccountID string `json:"account_id"`
			Months    int    `json:"months"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
			return
		}
		if body.AccountID != "" {
			accountID = body.AccountID
		}
		if body.Months != 0 {
			rawMonths = strconv.Itoa(body.Months)
		}
	}

	months := 6
	if rawMonths != "" {
		parsed, err := strconv.Atoi(rawMonths)
		if err != nil || parsed <= 0 {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("months must be a positive integer"))
			return
		}
		months = parsed
	}

	trends, err := h.IncomeSvc.Trends(r.Context(), accountID, months)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, trends)
}

// Alerts is a placeholder. Spending anomaly detection has not been
// built yet, but the dashboard polls this endpoint.
func (h *analyticsHandlers) Alerts(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, map[string]any{
		"alerts": []any{},
	})
}
