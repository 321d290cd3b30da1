package services

import (
	"context"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/models"
)

type merchantStore interface {
	Upsert(ctx context.Context, m *models.Merchant) error
	List(ctx context.Context, uid string) ([]models.Merchant, error)
	UpdatePayment(ctx context.Context, uid string, merchantID int, payment string) error
	Delete(ctx context.Context, uid string, merchantID int) error
}

type merchantService struct {
	merchants merchantStore
}

func NewMerchantService(merchants merchantStore) *merchantService {
	return &merchantService{merchants: merchants}
}

// Connect registers a merchant for a user. Reconnecting the same
// merchant refreshes its metadata instead of duplicating it.
func (s *merchantService) Connect(ctx context.Context, req dto.ConnectMerchantRequest) error {
	if req.MerchantID == 0 {
		return errs.NewValidationError("merchant_id is required")
	}
	return s.merchants.Upsert(ctx, &models.Merchant{
		MerchantID: req.MerchantID,
		UserID:     req.UserID,
		Name:       req.Name,
		LogoURL:    req.LogoURL,
	})
}

func (s *merchantService) List(ctx context.Context, uid string) ([]models.Merchant, error) {
	return s.merchants.List(ctx, uid)
}

func (s *merchantService) SetTopOfFilePayment(ctx context.Context, uid string, merchantID int, payment string) error {
	if payment == "" {
		return errs.NewValidationError("top_of_file_payment is required")
	}
	return s.merchants.UpdatePayment(ctx, uid, merchantID, payment)
}

func (s *merchantService) Disconnect(ctx context.Context, uid string, merchantID int) error {
	return s.merchants.Delete(ctx, uid, merchantID)
}
