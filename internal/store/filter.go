package store

import (
	"strings"

	"github.com/amankv/dime-backend/internal/models"
)

// Placeholder card ids the frontend sends for cards that have no real
// store-side identity. They mean "no card filter", not a literal id.
var reservedCardIDs = map[string]bool{
	"null":          true,
	"undefined":     true,
	"paypal-static": true,
}

func normalizeCardID(cardID string) string {
	if reservedCardIDs[cardID] {
		return ""
	}
	return cardID
}

func hasCardFilter(cardID, cardType string) bool {
	return normalizeCardID(cardID) != "" || cardType != ""
}

// matchesCardFilter implements the brand-fallback rule: rows explicitly
// linked to the card match, and so do unlinked rows whose payment method
// equals or contains the card's brand. That lets a newly added card
// surface historical transactions that were synced before it existed.
func matchesCardFilter(t models.Transaction, cardID, cardType string) bool {
	id := normalizeCardID(cardID)
	if id == "" && cardType == "" {
		return true
	}

	target := "UNKNOWN"
	if cardType != "" {
		target = strings.ToUpper(cardType)
	}
	method := strings.ToUpper(t.PaymentMethod)
	brandMatch := t.CardID == "" && (method == target || strings.Contains(method, target))

	if id != "" {
		return t.CardID == id || brandMatch
	}
	return brandMatch
}
