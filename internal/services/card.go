package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/pkg/logger"
)

type cardStore interface {
	Create(ctx context.Context, card *models.Card) error
	Get(ctx context.Context, uid, cardID string) (*models.Card, error)
	List(ctx context.Context, uid string) ([]models.Card, error)
	Delete(ctx context.Context, uid, cardID string) error
}

type fieldEncryptor interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
}

type cardService struct {
	cards    cardStore
	crypto   fieldEncryptor
	clockNow func() time.Time
}

func NewCardService(cards cardStore, crypto fieldEncryptor) *cardService {
	return &cardService{cards: cards, crypto: crypto, clockNow: time.Now}
}

// AddCard encrypts the PAN and CVV and persists the card. If encryption
// fails the card is not stored at all; plaintext never reaches the
// store as a fallback.
func (s *cardService) AddCard(ctx context.Context, req dto.AddCardRequest) (dto.CardView, error) {
	if req.Number == "" {
		return dto.CardView{}, errs.NewValidationError("card number is required")
	}

	numberEnc, err := s.crypto.Encrypt(ctx, req.Number)
	if err != nil {
		return dto.CardView{}, errs.NewEncryptionError("failed to encrypt card number")
	}
	cvvEnc := ""
	if req.CVV != "" {
		cvvEnc, err = s.crypto.Encrypt(ctx, req.CVV)
		if err != nil {
			return dto.CardView{}, errs.NewEncryptionError("failed to encrypt cvv")
		}
	}

	card := &models.Card{
		CardID:          uuid.NewString(),
		UserID:          req.UserID,
		CardType:        req.CardType,
		NumberEncrypted: numberEnc,
		CVVEncrypted:    cvvEnc,
		LastFour:        lastFour(req.Number),
		Expiration:      req.Expiration,
		CardholderName:  req.Name,
		Billing:         req.Billing,
		Benefits:        req.Benefits,
		CreatedAt:       s.clockNow(),
	}
	if err := s.cards.Create(ctx, card); err != nil {
		return dto.CardView{}, err
	}

	logger.FromContext(ctx).Info("card added", "card_id", card.CardID, "last_four", card.LastFour)
	return maskCard(card), nil
}

func (s *cardService) ListCards(ctx context.Context, uid string) ([]dto.CardView, error) {
	cards, err := s.cards.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	views := make([]dto.CardView, 0, len(cards))
	for i := range cards {
		views = append(views, maskCard(&cards[i]))
	}
	return views, nil
}

func (s *cardService) DeleteCard(ctx context.Context, uid, cardID string) error {
	if _, err := s.cards.Get(ctx, uid, cardID); err != nil {
		return err
	}
	return s.cards.Delete(ctx, uid, cardID)
}

// Brand preferences per spend category, used for the optimal-card pick.
var categoryPreferences = map[string][]string{
	"groceries":     {"amex", "discover"},
	"food_dining":   {"amex", "visa"},
	"dining":        {"amex", "visa"},
	"travel":        {"amex", "visa"},
	"gas_auto":      {"discover", "visa"},
	"gas":           {"discover", "visa"},
	"entertainment": {"visa", "mastercard"},
	"streaming":     {"visa", "mastercard"},
	"shopping":      {"amex", "discover"},
}

// OptimalCard recommends a saved card for a spend category. With no
// brand preference match, the first saved card wins.
func (s *cardService) OptimalCard(ctx context.Context, uid, category string) (dto.CardRecommendation, error) {
	category = strings.ToLower(category)
	rec := dto.CardRecommendation{Category: category}

	cards, err := s.cards.List(ctx, uid)
	if err != nil {
		return rec, err
	}
	if len(cards) == 0 {
		rec.Reason = "No cards saved yet. Add a card first."
		return rec, nil
	}

	preferred := categoryPreferences[category]
	for i := range cards {
		cardType := strings.ToLower(cards[i].CardType)
		for _, p := range preferred {
			if cardType == p {
				view := maskCard(&cards[i])
				rec.Card = &view
				rec.Reason = "Best for " + category + " purchases"
				return rec, nil
			}
		}
	}

	view := maskCard(&cards[0])
	rec.Card = &view
	rec.Reason = "Default card (add card types for better recommendations)"
	return rec, nil
}

func lastFour(number string) string {
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}

func maskCard(card *models.Card) dto.CardView {
	return dto.CardView{
		CardID:     card.CardID,
		CardType:   card.CardType,
		Number:     "****" + card.LastFour,
		LastFour:   card.LastFour,
		Expiration: card.Expiration,
		Name:       card.CardholderName,
		Billing:    card.Billing,
		Benefits:   card.Benefits,
	}
}
