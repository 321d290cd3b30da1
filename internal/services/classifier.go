package services

import (
	"context"
	"math"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/internal/store"
	"github.com/amankv/dime-backend/internal/taxonomy"
	"github.com/amankv/dime-backend/pkg/logger"
)

type embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

type classifierTransactionStore interface {
	GetByID(ctx context.Context, uid, id string) (*models.Transaction, error)
	SetCategory(ctx context.Context, uid, id, category string, confidence float64) error
	ListUnclassified(ctx context.Context) ([]models.Transaction, error)
	ApplyCategories(ctx context.Context, updates []store.CategoryUpdate) error
}

type embeddingLister interface {
	List(ctx context.Context) ([]models.CategoryEmbedding, error)
}

type classifierService struct {
	embedder   embedder
	txs        classifierTransactionStore
	embeddings embeddingLister
}

func NewClassifierService(embedder embedder, txs classifierTransactionStore, embeddings embeddingLister) *classifierService {
	return &classifierService{
		embedder:   embedder,
		txs:        txs,
		embeddings: embeddings,
	}
}

// Classify assigns the nearest category to one transaction. A
// transaction without product text is an explicit no-op: the category
// stays unset rather than defaulting to anything.
func (s *classifierService) Classify(ctx context.Context, uid, txID string) (category string, confidence float64, classified bool, err error) {
	tx, err := s.txs.GetByID(ctx, uid, txID)
	if err != nil {
		return "", 0, false, err
	}
	if tx.ProductText == "" {
		return "", 0, false, nil
	}

	embeddings, err := s.embeddings.List(ctx)
	if err != nil {
		return "", 0, false, err
	}

	vec, err := s.embedder.EmbedText(ctx, tx.ProductText)
	if err != nil {
		return "", 0, false, err
	}

	category, confidence = bestCategory(vec, embeddings)
	if category == "" {
		return "", 0, false, nil
	}
	if err := s.txs.SetCategory(ctx, uid, txID, category, confidence); err != nil {
		return "", 0, false, err
	}
	return category, confidence, true, nil
}

// ClassifyPending classifies every transaction with no category and a
// non-empty product text, across all users, in one pass.
func (s *classifierService) ClassifyPending(ctx context.Context) (dto.ClassifyResult, error) {
	result := dto.ClassifyResult{}
	log := logger.FromContext(ctx)

	pending, err := s.txs.ListUnclassified(ctx)
	if err != nil {
		return result, err
	}
	if len(pending) == 0 {
		return result, nil
	}

	embeddings, err := s.embeddings.List(ctx)
	if err != nil {
		return result, err
	}

	updates := make([]store.CategoryUpdate, 0, len(pending))
	for _, tx := range pending {
		vec, err := s.embedder.EmbedText(ctx, tx.ProductText)
		if err != nil {
			log.Warn("embedding failed, skipping transaction", "id", tx.ID, "error", err)
			result.Skipped++
			continue
		}
		category, confidence := bestCategory(vec, embeddings)
		if category == "" {
			result.Skipped++
			continue
		}
		updates = append(updates, store.CategoryUpdate{
			UserID:     tx.UserID,
			ID:         tx.ID,
			Category:   category,
			Confidence: confidence,
		})
	}

	if err := s.txs.ApplyCategories(ctx, updates); err != nil {
		return result, err
	}
	result.Classified = len(updates)

	log.Info("classification pass completed", "classified", result.Classified, "skipped", result.Skipped)
	return result, nil
}

// bestCategory picks the rank-1 category by cosine similarity. Ties go
// to whichever category comes first in taxonomy order, keeping the
// result deterministic.
func bestCategory(vec []float32, embeddings []models.CategoryEmbedding) (string, float64) {
	byName := make(map[string]models.CategoryEmbedding, len(embeddings))
	for _, e := range embeddings {
		byName[e.Category] = e
	}

	best := ""
	bestScore := math.Inf(-1)
	for _, c := range taxonomy.Categories() {
		e, ok := byName[c.Name]
		if !ok {
			continue
		}
		score := cosineSimilarity(vec, e.Embedding)
		if score > bestScore {
			best = c.Name
			bestScore = score
		}
	}
	if best == "" {
		return "", 0
	}
	return best, bestScore
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
