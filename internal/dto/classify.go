package dto

// ClassifyResult reports a classification batch run.
type ClassifyResult struct {
	Classified int `json:"classified"`
	Skipped    int `json:"skipped"`
}

// PointsResult reports a points recalculation run.
type PointsResult struct {
	Updated     int `json:"updated"`
	TotalPoints int `json:"total_points"`
}

// ResetResult reports what a database reset removed per collection.
type ResetResult struct {
	Transactions int `json:"transactions_deleted"`
	Cards        int `json:"cards_deleted"`
	Merchants    int `json:"merchants_deleted"`
	Embeddings   int `json:"embeddings_deleted"`
}
