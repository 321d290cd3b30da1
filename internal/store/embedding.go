package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/models"
)

type embeddingStore struct {
	client *firestore.Client
}

func NewEmbeddingStore(client *firestore.Client) *embeddingStore {
	return &embeddingStore{client: client}
}

func (s *embeddingStore) collection() *firestore.CollectionRef {
	return s.client.Collection("category_embeddings")
}

// Seed inserts a category embedding if it is not already present.
// Returns true when a new document was created, so setup stays
// idempotent across runs.
func (s *embeddingStore) Seed(ctx context.Context, e *models.CategoryEmbedding) (bool, error) {
	_, err := s.collection().Doc(e.Category).Create(ctx, e)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, errs.NewDatabaseError("seed embedding", err.Error())
	}
	return true, nil
}

// DeleteAll wipes the seeded category embeddings. The next setup run
// re-creates them.
func (s *embeddingStore) DeleteAll(ctx context.Context) (int, error) {
	docs, err := s.collection().Documents(ctx).GetAll()
	if err != nil {
		return 0, errs.NewDatabaseError("delete embeddings", err.Error())
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, d := range docs {
		j, err := bw.Delete(d.Ref)
		if err != nil {
			bw.End()
			return 0, errs.NewDatabaseError("delete embeddings", err.Error())
		}
		jobs = append(jobs, j)
	}
	bw.End()

	for _, j := range jobs {
		if _, err := j.Results(); err != nil {
			return 0, errs.NewDatabaseError("delete embeddings", err.Error())
		}
	}
	return len(jobs), nil
}

func (s *embeddingStore) List(ctx context.Context) ([]models.CategoryEmbedding, error) {
	docs, err := s.collection().Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("list embeddings", err.Error())
	}
	embeddings := make([]models.CategoryEmbedding, 0, len(docs))
	for _, d := range docs {
		var e models.CategoryEmbedding
		if err := d.DataTo(&e); err != nil {
			return nil, errs.NewDatabaseError("list embeddings", err.Error())
		}
		embeddings = append(embeddings, e)
	}
	return embeddings, nil
}
