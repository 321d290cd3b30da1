package services

import (
	"context"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/internal/taxonomy"
	"github.com/amankv/dime-backend/pkg/logger"
)

type embeddingSeeder interface {
	Seed(ctx context.Context, e *models.CategoryEmbedding) (bool, error)
	List(ctx context.Context) ([]models.CategoryEmbedding, error)
	DeleteAll(ctx context.Context) (int, error)
}

type adminTransactionStore interface {
	DeleteAll(ctx context.Context, uid string) (int, error)
}

type adminCardStore interface {
	DeleteAll(ctx context.Context, uid string) (int, error)
}

type adminMerchantStore interface {
	DeleteAll(ctx context.Context, uid string) (int, error)
}

type adminService struct {
	embedder   embedder
	embeddings embeddingSeeder
	txs        adminTransactionStore
	cards      adminCardStore
	merchants  adminMerchantStore
}

func NewAdminService(embedder embedder, embeddings embeddingSeeder, txs adminTransactionStore, cards adminCardStore, merchants adminMerchantStore) *adminService {
	return &adminService{
		embedder:   embedder,
		embeddings: embeddings,
		txs:        txs,
		cards:      cards,
		merchants:  merchants,
	}
}

// Setup seeds one embedding per category. Categories that already have
// an embedding are skipped without an embedding call, so re-running
// setup is idempotent and cheap.
func (s *adminService) Setup(ctx context.Context) (seeded int, err error) {
	log := logger.FromContext(ctx)

	existing, err := s.embeddings.List(ctx)
	if err != nil {
		return 0, err
	}
	present := make(map[string]bool, len(existing))
	for _, e := range existing {
		present[e.Category] = true
	}

	for _, c := range taxonomy.Categories() {
		if present[c.Name] {
			continue
		}
		vec, err := s.embedder.EmbedText(ctx, c.Description)
		if err != nil {
			return seeded, err
		}
		created, err := s.embeddings.Seed(ctx, &models.CategoryEmbedding{
			Category:    c.Name,
			Description: c.Description,
			Embedding:   vec,
		})
		if err != nil {
			return seeded, err
		}
		if created {
			seeded++
		}
	}

	log.Info("category embeddings seeded", "created", seeded)
	return seeded, nil
}

// Reset wipes the user's transactions, cards, and merchant connections
// plus the shared category embeddings. Setup re-seeds the embeddings;
// it is left to the caller so reset stays a pure teardown.
func (s *adminService) Reset(ctx context.Context, uid string) (dto.ResetResult, error) {
	var result dto.ResetResult
	var err error

	if result.Transactions, err = s.txs.DeleteAll(ctx, uid); err != nil {
		return result, err
	}
	if result.Cards, err = s.cards.DeleteAll(ctx, uid); err != nil {
		return result, err
	}
	if result.Merchants, err = s.merchants.DeleteAll(ctx, uid); err != nil {
		return result, err
	}
	if result.Embeddings, err = s.embeddings.DeleteAll(ctx); err != nil {
		return result, err
	}

	logger.FromContext(ctx).Info("database reset",
		"user_id", uid,
		"transactions", result.Transactions,
		"cards", result.Cards,
		"merchants", result.Merchants,
		"embeddings", result.Embeddings)
	return result, nil
}
