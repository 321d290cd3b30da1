package services

import (
	"context"
	"errors"
	"testing"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/pkg/helpers"
)

type fakePointsTxStore struct {
	byID    map[string]*models.Transaction
	list    []models.Transaction
	listErr error
	points  map[string]int
	setErr  map[string]error
}

func (f *fakePointsTxStore) GetByID(ctx context.Context, uid, id string) (*models.Transaction, error) {
	tx, ok := f.byID[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return tx, nil
}

func (f *fakePointsTxStore) Get(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, error) {
	return f.list, f.listErr
}

func (f *fakePointsTxStore) SetPoints(ctx context.Context, uid, id string, points int) error {
	if err, ok := f.setErr[id]; ok {
		return err
	}
	if f.points == nil {
		f.points = map[string]int{}
	}
	f.points[id] = points
	return nil
}

type fakePointsCardStore struct {
	cards map[string]*models.Card
}

func (f *fakePointsCardStore) Get(ctx context.Context, uid, cardID string) (*models.Card, error) {
	card, ok := f.cards[cardID]
	if !ok {
		return nil, errors.New("not found")
	}
	return card, nil
}

type fakeTextGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func TestCalculatePaypalEarnsNothing(t *testing.T) {
	txs := &fakePointsTxStore{byID: map[string]*models.Transaction{
		"t1": {ID: "t1", TotalAmount: 99.99, PaymentMethod: "PayPal", CardID: "card-1"},
	}}
	gen := &fakeTextGenerator{response: `{"base": 3}`}

	svc := NewPointsService(txs, &fakePointsCardStore{}, gen)
	points, err := svc.Calculate(helpers.TestCtx(), "aman", "t1", "card-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points != 0 {
		t.Fatalf("expected 0 points on the paypal rail, got %d", points)
	}
	if len(gen.prompts) != 0 {
		t.Fatal("benefits parsing should be skipped entirely for paypal")
	}
	if txs.points["t1"] != 0 {
		t.Fatalf("expected 0 persisted, got %d", txs.points["t1"])
	}
}

func TestCalculateNoCardFloorsAmount(t *testing.T) {
	txs := &fakePointsTxStore{byID: map[string]*models.Transaction{
		"t1": {ID: "t1", TotalAmount: 45.67, PaymentMethod: "VISA"},
	}}

	svc := NewPointsService(txs, &fakePointsCardStore{}, &fakeTextGenerator{})
	points, err := svc.Calculate(helpers.TestCtx(), "aman", "t1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points != 45 {
		t.Fatalf("expected floor(45.67) = 45, got %d", points)
	}
}

func TestCalculateAppliesCategoryMultiplier(t *testing.T) {
	txs := &fakePointsTxStore{byID: map[string]*models.Transaction{
		"t1": {ID: "t1", TotalAmount: 30.50, PaymentMethod: "VISA", CardID: "card-1", SpendCategory: "food_dining"},
	}}
	cards := &fakePointsCardStore{cards: map[string]*models.Card{
		"card-1": {CardID: "card-1", Benefits: "3x points on dining, 1x on everything else"},
	}}
	gen := &fakeTextGenerator{response: `Here you go: {"food_dining": 3, "base": 1}`}

	svc := NewPointsService(txs, cards, gen)
	points, err := svc.Calculate(helpers.TestCtx(), "aman", "t1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points != 91 {
		t.Fatalf("expected floor(30.50 * 3) = 91, got %d", points)
	}
}

func TestCalculateFallsBackToBaseMultiplier(t *testing.T) {
	txs := &fakePointsTxStore{byID: map[string]*models.Transaction{
		"t1": {ID: "t1", TotalAmount: 20, PaymentMethod: "VISA", CardID: "card-1", SpendCategory: "travel"},
	}}
	cards := &fakePointsCardStore{cards: map[string]*models.Card{
		"card-1": {CardID: "card-1", Benefits: "2x on all purchases"},
	}}
	gen := &fakeTextGenerator{response: `{"base": 2}`}

	svc := NewPointsService(txs, cards, gen)
	points, err := svc.Calculate(helpers.TestCtx(), "aman", "t1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points != 40 {
		t.Fatalf("expected 40, got %d", points)
	}
}

func TestCalculateModelFailureDegradesToFlatRate(t *testing.T) {
	txs := &fakePointsTxStore{byID: map[string]*models.Transaction{
		"t1": {ID: "t1", TotalAmount: 50.99, PaymentMethod: "VISA", CardID: "card-1", SpendCategory: "shopping"},
	}}
	cards := &fakePointsCardStore{cards: map[string]*models.Card{
		"card-1": {CardID: "card-1", Benefits: "5x on shopping"},
	}}
	gen := &fakeTextGenerator{err: errors.New("model unavailable")}

	svc := NewPointsService(txs, cards, gen)
	points, err := svc.Calculate(helpers.TestCtx(), "aman", "t1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points != 50 {
		t.Fatalf("expected flat 1x floor(50.99) = 50, got %d", points)
	}
}

func TestParseBenefitsDropsOutOfRangeMultipliers(t *testing.T) {
	gen := &fakeTextGenerator{response: `{"food_dining": 3, "travel": 50, "shopping": 0.5, "groceries": -2}`}
	svc := NewPointsService(&fakePointsTxStore{}, &fakePointsCardStore{}, gen)

	multipliers := svc.parseBenefits(helpers.TestCtx(), "some benefits")
	if len(multipliers) != 1 {
		t.Fatalf("expected only the valid multiplier to survive, got %v", multipliers)
	}
	if multipliers["food_dining"] != 3 {
		t.Fatalf("expected food_dining 3, got %v", multipliers)
	}
}

func TestParseBenefitsInvalidJSONIsEmpty(t *testing.T) {
	gen := &fakeTextGenerator{response: "I cannot help with that"}
	svc := NewPointsService(&fakePointsTxStore{}, &fakePointsCardStore{}, gen)

	if m := svc.parseBenefits(helpers.TestCtx(), "some benefits"); len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
	if m := svc.parseBenefits(helpers.TestCtx(), "   "); len(m) != 0 {
		t.Fatalf("blank benefits should not reach the model, got %v", m)
	}
}

func TestRecalculateAllSkipsFailedWrites(t *testing.T) {
	txs := &fakePointsTxStore{
		list: []models.Transaction{
			{ID: "t1", TotalAmount: 10.75, PaymentMethod: "VISA"},
			{ID: "t2", TotalAmount: 99.99, PaymentMethod: "PayPal Checkout"},
			{ID: "t3", TotalAmount: 5.25, PaymentMethod: "MASTERCARD"},
		},
		setErr: map[string]error{"t3": errors.New("write failed")},
	}

	svc := NewPointsService(txs, &fakePointsCardStore{}, &fakeTextGenerator{})
	result, err := svc.RecalculateAll(helpers.TestCtx(), "aman")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Updated != 2 {
		t.Fatalf("expected 2 updated, got %d", result.Updated)
	}
	if result.TotalPoints != 10 {
		t.Fatalf("expected 10 total points (floor 10.75 + 0 paypal), got %d", result.TotalPoints)
	}
}
