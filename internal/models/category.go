package models

// CategoryEmbedding is a seed description for one spend category along
// with its embedding vector. One document per category.
type CategoryEmbedding struct {
	Category    string    `firestore:"category" json:"category"`
	Description string    `firestore:"description" json:"description"`
	Embedding   []float32 `firestore:"embedding" json:"-"`
}
