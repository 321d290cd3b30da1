package models

import "time"

type Merchant struct {
	MerchantID        int       `firestore:"merchantId" json:"merchant_id"`
	UserID            string    `firestore:"userId" json:"-"`
	Name              string    `firestore:"name" json:"name"`
	LogoURL           string    `firestore:"logoUrl" json:"logo_url,omitempty"`
	TopOfFilePayment  string    `firestore:"topOfFilePayment" json:"top_of_file_payment"`
	ConnectedAt       time.Time `firestore:"connectedAt" json:"connected_at"`
	LastTransactionAt time.Time `firestore:"lastTransactionAt" json:"last_transaction_at,omitempty"`
}
