package models

import "time"

type CardBilling struct {
	Address string `firestore:"address" json:"address,omitempty"`
	City    string `firestore:"city" json:"city,omitempty"`
	State   string `firestore:"state" json:"state,omitempty"`
	Zip     string `firestore:"zip" json:"zip,omitempty"`
}

// Card stores KMS ciphertext for the PAN and CVV. The plaintext number
// never touches Firestore.
type Card struct {
	CardID          string      `firestore:"cardId" json:"card_id"`
	UserID          string      `firestore:"userId" json:"-"`
	CardType        string      `firestore:"cardType" json:"card_type"`
	NumberEncrypted string      `firestore:"numberEncrypted" json:"-"`
	CVVEncrypted    string      `firestore:"cvvEncrypted" json:"-"`
	LastFour        string      `firestore:"lastFour" json:"last_four"`
	Expiration      string      `firestore:"expiration" json:"expiration"`
	CardholderName  string      `firestore:"cardholderName" json:"name"`
	Billing         CardBilling `firestore:"billing" json:"billing"`
	Benefits        string      `firestore:"benefits" json:"benefits,omitempty"`
	CreatedAt       time.Time   `firestore:"createdAt" json:"-"`
}
