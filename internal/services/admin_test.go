package services

import (
	"context"
	"testing"

	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/internal/taxonomy"
	"github.com/amankv/dime-backend/pkg/helpers"
)

type fakeEmbeddingSeeder struct {
	existing []models.CategoryEmbedding
	seeded   []string
	deleted  int
	wiped    bool
}

func (f *fakeEmbeddingSeeder) Seed(ctx context.Context, e *models.CategoryEmbedding) (bool, error) {
	f.seeded = append(f.seeded, e.Category)
	return true, nil
}

func (f *fakeEmbeddingSeeder) List(ctx context.Context) ([]models.CategoryEmbedding, error) {
	return f.existing, nil
}

func (f *fakeEmbeddingSeeder) DeleteAll(ctx context.Context) (int, error) {
	f.wiped = true
	return f.deleted, nil
}

type fakeAdminTxStore struct {
	deleted int
}

func (f *fakeAdminTxStore) DeleteAll(ctx context.Context, uid string) (int, error) {
	return f.deleted, nil
}

type fakeAdminCardStore struct {
	deleted int
}

func (f *fakeAdminCardStore) DeleteAll(ctx context.Context, uid string) (int, error) {
	return f.deleted, nil
}

type fakeAdminMerchantStore struct {
	deleted int
}

func (f *fakeAdminMerchantStore) DeleteAll(ctx context.Context, uid string) (int, error) {
	return f.deleted, nil
}

func TestSetupSeedsEveryCategory(t *testing.T) {
	seeder := &fakeEmbeddingSeeder{}
	emb := &fakeEmbedder{}

	svc := NewAdminService(emb, seeder, &fakeAdminTxStore{}, &fakeAdminCardStore{}, &fakeAdminMerchantStore{})
	seeded, err := svc.Setup(helpers.TestCtx())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := len(taxonomy.Categories())
	if seeded != want {
		t.Fatalf("expected %d seeded, got %d", want, seeded)
	}
	if emb.calls != want {
		t.Fatalf("expected %d embedding calls, got %d", want, emb.calls)
	}
}

func TestSetupSkipsExistingCategories(t *testing.T) {
	seeder := &fakeEmbeddingSeeder{existing: []models.CategoryEmbedding{
		{Category: "food_dining"},
		{Category: "groceries"},
	}}
	emb := &fakeEmbedder{}

	svc := NewAdminService(emb, seeder, &fakeAdminTxStore{}, &fakeAdminCardStore{}, &fakeAdminMerchantStore{})
	seeded, err := svc.Setup(helpers.TestCtx())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := len(taxonomy.Categories()) - 2
	if seeded != want {
		t.Fatalf("expected %d seeded, got %d", want, seeded)
	}
	// Present categories must not cost an embedding call.
	if emb.calls != want {
		t.Fatalf("expected %d embedding calls, got %d", want, emb.calls)
	}
	for _, c := range seeder.seeded {
		if c == "food_dining" || c == "groceries" {
			t.Fatalf("re-seeded existing category %q", c)
		}
	}
}

func TestResetWipesEveryCollection(t *testing.T) {
	seeder := &fakeEmbeddingSeeder{deleted: 10}
	svc := NewAdminService(&fakeEmbedder{}, seeder,
		&fakeAdminTxStore{deleted: 42},
		&fakeAdminCardStore{deleted: 3},
		&fakeAdminMerchantStore{deleted: 2})

	result, err := svc.Reset(helpers.TestCtx(), "aman")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Transactions != 42 || result.Cards != 3 || result.Merchants != 2 || result.Embeddings != 10 {
		t.Fatalf("unexpected reset counts: %+v", result)
	}
	if !seeder.wiped {
		t.Fatal("expected category embeddings to be wiped")
	}
}
