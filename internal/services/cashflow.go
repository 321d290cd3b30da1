package services

import (
	"context"
	"sort"
	"time"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/internal/taxonomy"
)

type cashflowTransactionStore interface {
	Get(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, error)
}

type cashflowService struct {
	txs      cashflowTransactionStore
	clockNow func() time.Time
}

func NewCashflowService(txs cashflowTransactionStore) *cashflowService {
	return &cashflowService{txs: txs, clockNow: time.Now}
}

// Aggregate buckets spend by category over the trailing window.
// Unclassified transactions land in an explicit "uncategorized" bucket
// so the per-category totals always add up to the overall total.
func (s *cashflowService) Aggregate(ctx context.Context, uid string, days int) (dto.CashflowResult, error) {
	result := dto.CashflowResult{
		UserID:     uid,
		PeriodDays: days,
		ByCategory: []dto.CategoryCashflow{},
	}

	// Upstream datetimes are Z-suffixed; the boundary must be UTC for
	// the lexicographic comparison to hold on any host zone.
	from := s.clockNow().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	txs, err := s.txs.Get(ctx, uid, dto.TransactionQuery{DateFrom: from})
	if err != nil {
		return result, err
	}

	buckets := map[string]*dto.CategoryCashflow{}
	for _, tx := range txs {
		category := tx.SpendCategory
		if category == "" {
			category = taxonomy.Uncategorized
		}
		b, ok := buckets[category]
		if !ok {
			b = &dto.CategoryCashflow{Category: category}
			buckets[category] = b
		}
		b.TransactionCount++
		b.TotalSpent += tx.TotalAmount
		result.TotalSpent += tx.TotalAmount
	}

	for _, b := range buckets {
		if b.TransactionCount > 0 {
			b.AvgTransaction = b.TotalSpent / float64(b.TransactionCount)
		}
		result.ByCategory = append(result.ByCategory, *b)
	}
	sort.Slice(result.ByCategory, func(i, j int) bool {
		if result.ByCategory[i].TotalSpent != result.ByCategory[j].TotalSpent {
			return result.ByCategory[i].TotalSpent > result.ByCategory[j].TotalSpent
		}
		return result.ByCategory[i].Category < result.ByCategory[j].Category
	})

	return result, nil
}
