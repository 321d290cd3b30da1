package dto

// MonthlyIncome is one bucket of deposit history.
type MonthlyIncome struct {
	Month  string  `json:"month"`
	Income float64 `json:"income"`
}

type IncomeTrends struct {
	AccountID string          `json:"account_id,omitempty"`
	Source    string          `json:"source"` // "nessie" or "sample"
	Months    []MonthlyIncome `json:"months"`
	Average   float64         `json:"average"`
}
