package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/response"
)

type fakeCardSvc struct {
	view  dto.CardView
	cards []dto.CardView
	rec   dto.CardRecommendation
	err   error

	gotDelete struct {
		uid    string
		cardID string
	}
}

func (f *fakeCardSvc) AddCard(ctx context.Context, req dto.AddCardRequest) (dto.CardView, error) {
	return f.view, f.err
}
func (f *fakeCardSvc) ListCards(ctx context.Context, uid string) ([]dto.CardView, error) {
	return f.cards, f.err
}
func (f *fakeCardSvc) DeleteCard(ctx context.Context, uid, cardID string) error {
	f.gotDelete.uid = uid
	f.gotDelete.cardID = cardID
	return f.err
}
func (f *fakeCardSvc) OptimalCard(ctx context.Context, uid, category string) (dto.CardRecommendation, error) {
	return f.rec, f.err
}

func newTestCardHandler(c *fakeCardSvc) *cardHandlers {
	log := slog.New(slog.NewTextHandler(testDiscard{}, nil))
	deps := &Deps{
		ResponseHandler: response.New(log),
		CardSvc:         c,
	}
	return NewCardHandlers(deps)
}

func TestAddCardHandler(t *testing.T) {
	svc := &fakeCardSvc{view: dto.CardView{CardID: "c1", Number: "****4242", LastFour: "4242"}}
	h := newTestCardHandler(svc)

	body := `{"user_id":"aman","number":"4242424242424242","cvv":"123"}`
	req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.Add(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Message string       `json:"message"`
		Card    dto.CardView `json:"card"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Card.Number != "****4242" {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("4242424242424242")) {
		t.Fatal("full card number leaked into the response")
	}
}

func TestAddCardHandlerMissingUserID(t *testing.T) {
	h := newTestCardHandler(&fakeCardSvc{})

	req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewBufferString(`{"number":"4242"}`))
	rr := httptest.NewRecorder()

	h.Add(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestDeleteCardHandler(t *testing.T) {
	svc := &fakeCardSvc{}
	h := newTestCardHandler(svc)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("cardId", "c1")
	req := httptest.NewRequest(http.MethodDelete, "/cards/c1?user_id=aman", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()

	h.Delete(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	if svc.gotDelete.uid != "aman" || svc.gotDelete.cardID != "c1" {
		t.Fatalf("delete called with %+v", svc.gotDelete)
	}
}

func TestDeleteCardHandlerRequiresUserID(t *testing.T) {
	h := newTestCardHandler(&fakeCardSvc{})

	req := httptest.NewRequest(http.MethodDelete, "/cards/c1", nil)
	rr := httptest.NewRecorder()

	h.Delete(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestOptimalCardHandler(t *testing.T) {
	svc := &fakeCardSvc{rec: dto.CardRecommendation{Category: "groceries"}}
	h := newTestCardHandler(svc)

	body := `{"user_id":"aman","category":"groceries","merchant":"Whole Foods"}`
	req := httptest.NewRequest(http.MethodPost, "/optimal-card", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.Optimal(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["merchant"] != "Whole Foods" || resp["category"] != "groceries" {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
}
