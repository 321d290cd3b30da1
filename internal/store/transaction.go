package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/models"
	"github.com/amankv/dime-backend/pkg/logger"
)

type transactionStore struct {
	client *firestore.Client
}

func NewTransactionStore(client *firestore.Client) *transactionStore {
	return &transactionStore{client: client}
}

func (s *transactionStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("transactions")
}

// SaveBatch upserts one page of transactions inside a single Firestore
// transaction. Existing rows only get paymentMethod refreshed and cardId
// filled if it was empty; category, points and the raw payload are never
// touched on re-sync. Returns the number of rows written. A commit
// failure rolls the whole batch back.
func (s *transactionStore) SaveBatch(ctx context.Context, uid string, txs []models.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	log := logger.FromContext(ctx)
	saved := 0

	err := s.client.RunTransaction(ctx, func(ctx context.Context, ft *firestore.Transaction) error {
		saved = 0
		coll := s.collection(uid)
		now := time.Now()

		// All reads must happen before any write.
		type pending struct {
			tx           models.Transaction
			ref          *firestore.DocumentRef
			exists       bool
			storedCardID string
		}
		batch := make([]pending, 0, len(txs))
		for _, t := range txs {
			if t.ID == "" {
				log.Warn("skipping transaction without id", "merchant_id", t.MerchantID)
				continue
			}
			ref := coll.Doc(t.ID)
			snap, err := ft.Get(ref)
			if err != nil && status.Code(err) != codes.NotFound {
				log.Warn("skipping transaction after read failure", "id", t.ID, "error", err)
				continue
			}
			p := pending{tx: t, ref: ref, exists: err == nil && snap.Exists()}
			if p.exists {
				if v, ok := snap.Data()["cardId"].(string); ok {
					p.storedCardID = v
				}
			}
			batch = append(batch, p)
		}

		for _, p := range batch {
			if p.exists {
				updates := []firestore.Update{
					{Path: "paymentMethod", Value: p.tx.PaymentMethod},
					{Path: "updatedAt", Value: now},
				}
				// Coalesce: only fill the card link if it was never set.
				if p.storedCardID == "" && p.tx.CardID != "" {
					updates = append(updates, firestore.Update{Path: "cardId", Value: p.tx.CardID})
				}
				if err := ft.Update(p.ref, updates); err != nil {
					log.Warn("skipping transaction after update failure", "id", p.tx.ID, "error", err)
					continue
				}
			} else {
				t := p.tx
				t.CreatedAt = now
				t.UpdatedAt = now
				if err := ft.Set(p.ref, t); err != nil {
					log.Warn("skipping transaction after set failure", "id", t.ID, "error", err)
					continue
				}
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return 0, errs.NewDatabaseError("save transaction batch", err.Error())
	}
	return saved, nil
}

// Get returns transactions ordered by datetime descending. Merchant and
// date filters run server-side; the card filter runs client-side so the
// brand-fallback rule can match unlinked rows.
func (s *transactionStore) Get(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, error) {
	query := s.collection(uid).Query
	if q.MerchantID != nil {
		query = query.Where("merchantId", "==", *q.MerchantID)
	}
	if q.DateFrom != "" {
		query = query.Where("datetime", ">=", q.DateFrom)
	}
	query = query.OrderBy("datetime", firestore.Desc)

	cardFilter := hasCardFilter(q.CardID, q.CardType)
	if !cardFilter && q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("get transactions", err.Error())
	}

	txs := make([]models.Transaction, 0, len(docs))
	for _, d := range docs {
		var t models.Transaction
		if err := d.DataTo(&t); err != nil {
			return nil, errs.NewDatabaseError("get transactions", err.Error())
		}
		if cardFilter && !matchesCardFilter(t, q.CardID, q.CardType) {
			continue
		}
		txs = append(txs, t)
		if q.Limit > 0 && len(txs) == q.Limit {
			break
		}
	}
	return txs, nil
}

func (s *transactionStore) GetByID(ctx context.Context, uid, id string) (*models.Transaction, error) {
	doc, err := s.collection(uid).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("transaction not found")
		}
		return nil, errs.NewDatabaseError("get transaction", err.Error())
	}
	var t models.Transaction
	if err := doc.DataTo(&t); err != nil {
		return nil, errs.NewDatabaseError("get transaction", err.Error())
	}
	return &t, nil
}

// ListUnclassified returns every transaction across all users with no
// category yet and a non-empty product text.
func (s *transactionStore) ListUnclassified(ctx context.Context) ([]models.Transaction, error) {
	docs, err := s.client.CollectionGroup("transactions").
		Where("spendCategory", "==", "").
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("list unclassified", err.Error())
	}

	txs := make([]models.Transaction, 0, len(docs))
	for _, d := range docs {
		var t models.Transaction
		if err := d.DataTo(&t); err != nil {
			return nil, errs.NewDatabaseError("list unclassified", err.Error())
		}
		if t.ProductText == "" {
			continue
		}
		txs = append(txs, t)
	}
	return txs, nil
}

func (s *transactionStore) SetCategory(ctx context.Context, uid, id, category string, confidence float64) error {
	_, err := s.collection(uid).Doc(id).Update(ctx, []firestore.Update{
		{Path: "spendCategory", Value: category},
		{Path: "categoryConfidence", Value: confidence},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errs.NewDatabaseError("set category", err.Error())
	}
	return nil
}

type CategoryUpdate struct {
	UserID     string
	ID         string
	Category   string
	Confidence float64
}

// ApplyCategories writes one batch of classification results.
func (s *transactionStore) ApplyCategories(ctx context.Context, updates []CategoryUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	log := logger.FromContext(ctx)
	bw := s.client.BulkWriter(ctx)
	now := time.Now()

	type updateJob struct {
		id  string
		job *firestore.BulkWriterJob
	}
	jobs := make([]updateJob, 0, len(updates))
	for _, u := range updates {
		ref := s.collection(u.UserID).Doc(u.ID)
		j, err := bw.Update(ref, []firestore.Update{
			{Path: "spendCategory", Value: u.Category},
			{Path: "categoryConfidence", Value: u.Confidence},
			{Path: "updatedAt", Value: now},
		})
		if err != nil {
			bw.End()
			return errs.NewDatabaseError("apply categories", err.Error())
		}
		jobs = append(jobs, updateJob{id: u.ID, job: j})
	}
	bw.End()

	for _, entry := range jobs {
		if _, err := entry.job.Results(); err != nil {
			log.Error("failed to apply category", "id", entry.id, "error", err)
			return errs.NewDatabaseError("apply categories", err.Error())
		}
	}
	return nil
}

func (s *transactionStore) SetPoints(ctx context.Context, uid, id string, points int) error {
	_, err := s.collection(uid).Doc(id).Update(ctx, []firestore.Update{
		{Path: "pointsEarned", Value: points},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errs.NewDatabaseError("set points", err.Error())
	}
	return nil
}

// DeleteAll removes every transaction for a user.
func (s *transactionStore) DeleteAll(ctx context.Context, uid string) (int, error) {
	docs, err := s.collection(uid).Documents(ctx).GetAll()
	if err != nil {
		return 0, errs.NewDatabaseError("delete transactions", err.Error())
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, d := range docs {
		j, err := bw.Delete(d.Ref)
		if err != nil {
			bw.End()
			return 0, errs.NewDatabaseError("delete transactions", err.Error())
		}
		jobs = append(jobs, j)
	}
	bw.End()

	for _, j := range jobs {
		if _, err := j.Results(); err != nil {
			return 0, errs.NewDatabaseError("delete transactions", err.Error())
		}
	}
	return len(jobs), nil
}
