package dto

import "github.com/amankv/dime-backend/internal/models"

type ConnectMerchantRequest struct {
	UserID     string `json:"user_id"`
	MerchantID int    `json:"merchant_id"`
	Name       string `json:"name"`
	LogoURL    string `json:"logo_url,omitempty"`
}

type UpdatePaymentRequest struct {
	UserID  string `json:"user_id"`
	Payment string `json:"top_of_file_payment"`
}

type MerchantsResponse struct {
	Merchants []models.Merchant `json:"merchants"`
	Count     int               `json:"count"`
}

// TopOfFileEntry is the per-merchant payment projection shown on the
// dashboard's top-of-file view.
type TopOfFileEntry struct {
	MerchantID int    `json:"merchant_id"`
	Merchant   string `json:"merchant"`
	Payment    string `json:"top_of_file_payment"`
}

type TopOfFileResponse struct {
	Data  []TopOfFileEntry `json:"data"`
	Error string           `json:"error,omitempty"`
}
