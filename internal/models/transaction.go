package models

import (
	"encoding/json"
	"time"
)

type Transaction struct {
	ID                 string          `firestore:"id" json:"id"` // upstream transaction id (doc ID)
	ExternalID         string          `firestore:"externalId" json:"external_id,omitempty"`
	UserID             string          `firestore:"userId" json:"-"`
	MerchantID         int             `firestore:"merchantId" json:"merchant_id"`
	MerchantName       string          `firestore:"merchantName" json:"merchant_name"`
	DateTime           string          `firestore:"datetime" json:"datetime"` // RFC 3339 as the upstream returns
	OrderStatus        string          `firestore:"orderStatus" json:"order_status,omitempty"`
	TotalAmount        float64         `firestore:"totalAmount" json:"total_amount"`
	Currency           string          `firestore:"currency" json:"currency"`
	SpendCategory      string          `firestore:"spendCategory" json:"category,omitempty"` // empty until classified
	CategoryConfidence *float64        `firestore:"categoryConfidence" json:"category_confidence,omitempty"`
	PointsEarned       int             `firestore:"pointsEarned" json:"points_earned"`
	PaymentMethod      string          `firestore:"paymentMethod" json:"payment_method,omitempty"`
	CardID             string          `firestore:"cardId" json:"card_id,omitempty"`
	ProductText        string          `firestore:"productText" json:"-"`
	RawJSON            json.RawMessage `firestore:"rawJson" json:"raw_json,omitempty"`
	CreatedAt          time.Time       `firestore:"createdAt" json:"-"`
	UpdatedAt          time.Time       `firestore:"updatedAt" json:"-"`
}
