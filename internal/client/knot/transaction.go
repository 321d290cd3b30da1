package knotclient

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/amankv/dime-backend/internal/models"
)

// amount tolerates the upstream sending totals as either a JSON number
// or a numeric string.
type amount float64

func (a *amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*a = amount(f)
	return nil
}

type wirePrice struct {
	Total    amount `json:"total"`
	Currency string `json:"currency"`
}

type wireProduct struct {
	Name string `json:"name"`
}

type wirePaymentMethod struct {
	Type       string `json:"type"`
	Brand      string `json:"brand"`
	ExternalID string `json:"external_id"`
}

type wireMerchant struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type wireTransaction struct {
	ID             string              `json:"id"`
	ExternalID     string              `json:"external_id"`
	Datetime       string              `json:"datetime"`
	OrderStatus    string              `json:"order_status"`
	Price          wirePrice           `json:"price"`
	Products       []wireProduct       `json:"products"`
	PaymentMethods []wirePaymentMethod `json:"payment_methods"`
	CardID         string              `json:"card_id"`
	AccountID      string              `json:"account_id"`
	Merchant       wireMerchant        `json:"merchant"`
}

// ParseTransaction normalizes one raw upstream record. Merchant name and
// id fall back to the sync context when the payload omits them. The raw
// payload is preserved verbatim.
func ParseTransaction(raw json.RawMessage, userID string, merchantID int, merchantName string) (models.Transaction, error) {
	var wt wireTransaction
	if err := json.Unmarshal(raw, &wt); err != nil {
		return models.Transaction{}, err
	}

	mID := wt.Merchant.ID
	if mID == 0 {
		mID = merchantID
	}
	mName := wt.Merchant.Name
	if mName == "" {
		mName = merchantName
	}

	currency := wt.Price.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now()
	return models.Transaction{
		ID:            wt.ID,
		ExternalID:    wt.ExternalID,
		UserID:        userID,
		MerchantID:    mID,
		MerchantName:  mName,
		DateTime:      wt.Datetime,
		OrderStatus:   wt.OrderStatus,
		TotalAmount:   float64(wt.Price.Total),
		Currency:      currency,
		PaymentMethod: derivePaymentMethod(wt.PaymentMethods),
		CardID:        resolveCardID(wt),
		ProductText:   productText(wt.Products),
		RawJSON:       raw,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// derivePaymentMethod inspects the first payment-method descriptor. An
// explicit PAYPAL marker on either the type or brand field wins over a
// generic brand or type string.
func derivePaymentMethod(pms []wirePaymentMethod) string {
	if len(pms) == 0 {
		return ""
	}
	pmType := strings.ToUpper(pms[0].Type)
	pmBrand := strings.ToUpper(pms[0].Brand)
	if pmType == "PAYPAL" || pmBrand == "PAYPAL" {
		return "PAYPAL"
	}
	if pmBrand != "" {
		return pmBrand
	}
	if pmType != "" {
		return pmType
	}
	return "CARD"
}

func resolveCardID(wt wireTransaction) string {
	if wt.CardID != "" {
		return wt.CardID
	}
	if wt.AccountID != "" {
		return wt.AccountID
	}
	if len(wt.PaymentMethods) > 0 {
		return wt.PaymentMethods[0].ExternalID
	}
	return ""
}

// productText joins the first ten product names into the classifier input.
func productText(products []wireProduct) string {
	if len(products) > 10 {
		products = products[:10]
	}
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return strings.Join(names, " ")
}
