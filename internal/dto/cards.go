package dto

import "github.com/amankv/dime-backend/internal/models"

// AddCardRequest carries the plaintext card details submitted by the
// client. Number and CVV are encrypted before anything is stored.
type AddCardRequest struct {
	UserID     string             `json:"user_id"`
	CardType   string             `json:"card_type"`
	Number     string             `json:"number"`
	CVV        string             `json:"cvv"`
	Expiration string             `json:"expiration"`
	Name       string             `json:"name"`
	Billing    models.CardBilling `json:"billing"`
	Benefits   string             `json:"benefits,omitempty"`
}

// CardView is the masked shape returned to clients.
type CardView struct {
	CardID     string             `json:"card_id"`
	CardType   string             `json:"card_type"`
	Number     string             `json:"number"` // "****" + last four
	LastFour   string             `json:"last_four"`
	Expiration string             `json:"expiration"`
	Name       string             `json:"name"`
	Billing    models.CardBilling `json:"billing"`
	Benefits   string             `json:"benefits,omitempty"`
}

type CardsResponse struct {
	Cards []CardView `json:"cards"`
	Count int        `json:"count"`
}

// CardRecommendation is the optimal-card pick for a spend category.
type CardRecommendation struct {
	Category string    `json:"category"`
	Card     *CardView `json:"card"`
	Reason   string    `json:"reason"`
}
