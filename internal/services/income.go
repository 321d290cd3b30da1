package services

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	nessieclient "github.com/amankv/dime-backend/internal/client/nessie"
	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/pkg/logger"
)

type bankingClient interface {
	Configured() bool
	Accounts(ctx context.Context) ([]nessieclient.Account, error)
	Deposits(ctx context.Context, accountID string) ([]nessieclient.Deposit, error)
}

type incomeService struct {
	banking  bankingClient
	clockNow func() time.Time
}

func NewIncomeService(banking bankingClient) *incomeService {
	return &incomeService{banking: banking, clockNow: time.Now}
}

// Trends aggregates deposit history by month. Without a configured
// banking sandbox, or when it returns no usable data, deterministic
// sample data fills in so the dashboard always renders.
func (s *incomeService) Trends(ctx context.Context, accountID string, months int) (dto.IncomeTrends, error) {
	if months <= 0 {
		months = 6
	}
	log := logger.FromContext(ctx)

	if !s.banking.Configured() {
		return s.sampleTrends(months), nil
	}

	deposits, err := s.fetchDeposits(ctx, accountID)
	if err != nil {
		log.Warn("deposit fetch failed, using sample income data", "error", err)
		return s.sampleTrends(months), nil
	}

	trends := s.aggregateByMonth(deposits, months)
	total := 0.0
	for _, m := range trends.Months {
		total += m.Income
	}
	if total == 0 {
		return s.sampleTrends(months), nil
	}

	trends.AccountID = accountID
	return trends, nil
}

func (s *incomeService) fetchDeposits(ctx context.Context, accountID string) ([]nessieclient.Deposit, error) {
	if accountID != "" {
		return s.banking.Deposits(ctx, accountID)
	}

	accounts, err := s.banking.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	var all []nessieclient.Deposit
	for _, account := range accounts {
		deposits, err := s.banking.Deposits(ctx, account.ID)
		if err != nil {
			continue
		}
		all = append(all, deposits...)
	}
	return all, nil
}

func (s *incomeService) aggregateByMonth(deposits []nessieclient.Deposit, months int) dto.IncomeTrends {
	trends := dto.IncomeTrends{Source: "nessie"}
	now := s.clockNow()

	type bucket struct {
		key   string
		label string
		total float64
	}
	// Oldest month first, stepping back in 30-day increments.
	buckets := make([]bucket, months)
	index := map[string]int{}
	for i := 0; i < months; i++ {
		d := now.AddDate(0, 0, -30*i)
		b := bucket{key: d.Format("2006-01"), label: d.Format("Jan")}
		pos := months - 1 - i
		buckets[pos] = b
		index[b.key] = pos
	}

	for _, deposit := range deposits {
		if len(deposit.TransactionDate) < 7 {
			continue
		}
		if pos, ok := index[deposit.TransactionDate[:7]]; ok {
			buckets[pos].total += deposit.Amount
		}
	}

	var total float64
	for _, b := range buckets {
		trends.Months = append(trends.Months, dto.MonthlyIncome{Month: b.label, Income: b.total})
		total += b.total
	}
	if months > 0 {
		trends.Average = math.Round(total/float64(months)*100) / 100
	}
	return trends
}

// sampleTrends generates demo income with per-month variation derived
// from a hash of the month label, so repeated calls stay identical.
func (s *incomeService) sampleTrends(months int) dto.IncomeTrends {
	trends := dto.IncomeTrends{Source: "sample"}
	now := s.clockNow()
	const baseIncome = 4500

	var total float64
	for i := months - 1; i >= 0; i-- {
		label := now.AddDate(0, 0, -30*i).Format("Jan")
		h := fnv.New32a()
		h.Write([]byte(label))
		variation := float64(h.Sum32()%1000) - 500
		amount := baseIncome + variation

		trends.Months = append(trends.Months, dto.MonthlyIncome{Month: label, Income: amount})
		total += amount
	}
	if months > 0 {
		trends.Average = math.Round(total/float64(months)*100) / 100
	}
	return trends
}
