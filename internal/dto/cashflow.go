package dto

// CategoryCashflow is the aggregate for one spend category.
type CategoryCashflow struct {
	Category         string  `json:"category"`
	TransactionCount int     `json:"transaction_count"`
	TotalSpent       float64 `json:"total_spent"`
	AvgTransaction   float64 `json:"avg_transaction"`
}

type CashflowResult struct {
	UserID     string             `json:"user_id"`
	PeriodDays int                `json:"period_days"`
	TotalSpent float64            `json:"total_spent"`
	ByCategory []CategoryCashflow `json:"by_category"`
}
