package store

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/models"
)

type merchantStore struct {
	client *firestore.Client
}

func NewMerchantStore(client *firestore.Client) *merchantStore {
	return &merchantStore{client: client}
}

func (s *merchantStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("merchants")
}

func (s *merchantStore) doc(uid string, merchantID int) *firestore.DocumentRef {
	return s.collection(uid).Doc(strconv.Itoa(merchantID))
}

// Upsert creates or refreshes a merchant connection. The doc id is the
// upstream merchant id, which enforces one row per (merchant, user).
func (s *merchantStore) Upsert(ctx context.Context, m *models.Merchant) error {
	if m.TopOfFilePayment == "" {
		m.TopOfFilePayment = "paypal"
	}
	if m.ConnectedAt.IsZero() {
		m.ConnectedAt = time.Now()
	}
	// MergeAll needs map data, and merging keeps lastTransactionAt
	// intact when a merchant is reconnected.
	_, err := s.doc(m.UserID, m.MerchantID).Set(ctx, map[string]any{
		"merchantId":       m.MerchantID,
		"userId":           m.UserID,
		"name":             m.Name,
		"logoUrl":          m.LogoURL,
		"topOfFilePayment": m.TopOfFilePayment,
		"connectedAt":      m.ConnectedAt,
	}, firestore.MergeAll)
	if err != nil {
		return errs.NewDatabaseError("upsert merchant", err.Error())
	}
	return nil
}

// TouchLastTransaction bumps lastTransactionAt after an ingest. Rows
// are only created through Upsert; ingests for a merchant the user
// never connected must not leave a doc holding nothing but a
// timestamp, so a missing row is a no-op.
func (s *merchantStore) TouchLastTransaction(ctx context.Context, uid string, merchantID int) error {
	_, err := s.doc(uid, merchantID).Update(ctx, []firestore.Update{
		{Path: "lastTransactionAt", Value: time.Now()},
	})
	if err := ignoreNotFound(err); err != nil {
		return errs.NewDatabaseError("touch merchant", err.Error())
	}
	return nil
}

// UpdatePayment sets the top-of-file payment and bumps activity in one
// write. Missing rows are a no-op, same as TouchLastTransaction.
func (s *merchantStore) UpdatePayment(ctx context.Context, uid string, merchantID int, payment string) error {
	_, err := s.doc(uid, merchantID).Update(ctx, []firestore.Update{
		{Path: "topOfFilePayment", Value: payment},
		{Path: "lastTransactionAt", Value: time.Now()},
	})
	if err := ignoreNotFound(err); err != nil {
		return errs.NewDatabaseError("update merchant payment", err.Error())
	}
	return nil
}

// ignoreNotFound drops NotFound so update paths can treat a missing
// doc as zero rows affected.
func ignoreNotFound(err error) error {
	if status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}

func (s *merchantStore) List(ctx context.Context, uid string) ([]models.Merchant, error) {
	docs, err := s.collection(uid).OrderBy("lastTransactionAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("list merchants", err.Error())
	}
	merchants := make([]models.Merchant, 0, len(docs))
	for _, d := range docs {
		var m models.Merchant
		if err := d.DataTo(&m); err != nil {
			return nil, errs.NewDatabaseError("list merchants", err.Error())
		}
		merchants = append(merchants, m)
	}
	return merchants, nil
}

func (s *merchantStore) Delete(ctx context.Context, uid string, merchantID int) error {
	_, err := s.doc(uid, merchantID).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete merchant", err.Error())
	}
	return nil
}

// DeleteAll removes every merchant connection for a user.
func (s *merchantStore) DeleteAll(ctx context.Context, uid string) (int, error) {
	docs, err := s.collection(uid).Documents(ctx).GetAll()
	if err != nil {
		return 0, errs.NewDatabaseError("delete merchants", err.Error())
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, d := range docs {
		j, err := bw.Delete(d.Ref)
		if err != nil {
			bw.End()
			return 0, errs.NewDatabaseError("delete merchants", err.Error())
		}
		jobs = append(jobs, j)
	}
	bw.End()

	for _, j := range jobs {
		if _, err := j.Results(); err != nil {
			return 0, errs.NewDatabaseError("delete merchants", err.Error())
		}
	}
	return len(jobs), nil
}
