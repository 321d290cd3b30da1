package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/pkg/logger"
)

// Payment rail that never earns points.
const zeroPointsMarker = "PAYPAL"

type pointsTransactionStore interface {
	GetByID(ctx context.Context, uid, id string) (*models.Transaction, error)
	Get(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, error)
	SetPoints(ctx context.Context, uid, id string, points int) error
}

type pointsCardStore interface {
	Get(ctx context.Context, uid, cardID string) (*models.Card, error)
}

type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type pointsService struct {
	txs   pointsTransactionStore
	cards pointsCardStore
	gen   textGenerator
}

func NewPointsService(txs pointsTransactionStore, cards pointsCardStore, gen textGenerator) *pointsService {
	return &pointsService{txs: txs, cards: cards, gen: gen}
}

// Calculate computes and persists points for one transaction. Rules, in
// order: the zero-points rail earns nothing; no linked card earns 1x;
// otherwise the card's benefits text decides the multiplier.
func (s *pointsService) Calculate(ctx context.Context, uid, txID, cardID string) (int, error) {
	tx, err := s.txs.GetByID(ctx, uid, txID)
	if err != nil {
		return 0, err
	}

	if strings.Contains(strings.ToUpper(tx.PaymentMethod), zeroPointsMarker) {
		if err := s.txs.SetPoints(ctx, uid, txID, 0); err != nil {
			return 0, err
		}
		return 0, nil
	}

	useCardID := cardID
	if useCardID == "" {
		useCardID = tx.CardID
	}
	if useCardID == "" {
		points := int(math.Floor(tx.TotalAmount))
		if err := s.txs.SetPoints(ctx, uid, txID, points); err != nil {
			return 0, err
		}
		return points, nil
	}

	benefits := ""
	if card, err := s.cards.Get(ctx, uid, useCardID); err == nil {
		benefits = card.Benefits
	}

	multipliers := s.parseBenefits(ctx, benefits)
	multiplier, ok := multipliers[tx.SpendCategory]
	if !ok {
		multiplier, ok = multipliers["base"]
		if !ok {
			multiplier = 1
		}
	}

	points := int(math.Floor(tx.TotalAmount * float64(multiplier)))
	if err := s.txs.SetPoints(ctx, uid, txID, points); err != nil {
		return 0, err
	}
	return points, nil
}

// RecalculateAll resets points for every transaction of a user with the
// simplified rules: zero-points rail stays at 0, everything else earns 1x.
func (s *pointsService) RecalculateAll(ctx context.Context, uid string) (dto.PointsResult, error) {
	result := dto.PointsResult{}
	log := logger.FromContext(ctx)

	txs, err := s.txs.Get(ctx, uid, dto.TransactionQuery{})
	if err != nil {
		return result, err
	}

	for _, tx := range txs {
		points := 0
		if !strings.Contains(strings.ToUpper(tx.PaymentMethod), zeroPointsMarker) {
			points = int(math.Floor(tx.TotalAmount))
		}
		if err := s.txs.SetPoints(ctx, uid, tx.ID, points); err != nil {
			log.Warn("failed to persist points", "id", tx.ID, "error", err)
			continue
		}
		result.Updated++
		result.TotalPoints += points
	}
	return result, nil
}

var jsonObjectPattern = regexp.MustCompile(`\{[^}]+\}`)

// parseBenefits extracts category multipliers from free-text benefits
// using the completion model. Any failure degrades to an empty mapping,
// which the caller treats as a flat 1x.
func (s *pointsService) parseBenefits(ctx context.Context, benefits string) map[string]int {
	if strings.TrimSpace(benefits) == "" {
		return map[string]int{}
	}

	prompt := fmt.Sprintf(`Extract point multipliers from this credit card benefits text.
Return ONLY a valid JSON object with category:multiplier pairs.
Valid categories: food_dining, groceries, gas_auto, shopping, travel, entertainment, healthcare, services, home
If a category is not mentioned, do not include it.
For "all purchases" or "everything" use "base" key.

Benefits text: %s

Return JSON only, no explanation:`, benefits)

	log := logger.FromContext(ctx)

	response, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		log.Warn("benefits parsing failed", "error", err)
		return map[string]int{}
	}

	match := jsonObjectPattern.FindString(response)
	if match == "" {
		return map[string]int{}
	}

	var raw map[string]float64
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		log.Warn("benefits parsing returned invalid JSON", "error", err)
		return map[string]int{}
	}

	multipliers := make(map[string]int, len(raw))
	for category, v := range raw {
		m := int(v)
		// Model hallucinations outside a sane range are dropped.
		if float64(m) != v || m < 1 || m > 10 {
			continue
		}
		multipliers[category] = m
	}
	return multipliers
}
