package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/models"
)

type cardStore struct {
	client *firestore.Client
}

func NewCardStore(client *firestore.Client) *cardStore {
	return &cardStore{client: client}
}

func (s *cardStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("cards")
}

// Create persists a card. Number and CVV must already be ciphertext.
func (s *cardStore) Create(ctx context.Context, card *models.Card) error {
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now()
	}
	_, err := s.collection(card.UserID).Doc(card.CardID).Create(ctx, card)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewValidationError("card already exists")
		}
		return errs.NewDatabaseError("create card", err.Error())
	}
	return nil
}

func (s *cardStore) Get(ctx context.Context, uid, cardID string) (*models.Card, error) {
	doc, err := s.collection(uid).Doc(cardID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("card not found")
		}
		return nil, errs.NewDatabaseError("get card", err.Error())
	}
	var card models.Card
	if err := doc.DataTo(&card); err != nil {
		return nil, errs.NewDatabaseError("get card", err.Error())
	}
	return &card, nil
}

func (s *cardStore) List(ctx context.Context, uid string) ([]models.Card, error) {
	docs, err := s.collection(uid).OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("list cards", err.Error())
	}
	cards := make([]models.Card, 0, len(docs))
	for _, d := range docs {
		var card models.Card
		if err := d.DataTo(&card); err != nil {
			return nil, errs.NewDatabaseError("list cards", err.Error())
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (s *cardStore) Delete(ctx context.Context, uid, cardID string) error {
	_, err := s.collection(uid).Doc(cardID).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete card", err.Error())
	}
	return nil
}

// DeleteAll removes every card for a user.
func (s *cardStore) DeleteAll(ctx context.Context, uid string) (int, error) {
	docs, err := s.collection(uid).Documents(ctx).GetAll()
	if err != nil {
		return 0, errs.NewDatabaseError("delete cards", err.Error())
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, d := range docs {
		j, err := bw.Delete(d.Ref)
		if err != nil {
			bw.End()
			return 0, errs.NewDatabaseError("delete cards", err.Error())
		}
		jobs = append(jobs, j)
	}
	bw.End()

	for _, j := range jobs {
		if _, err := j.Results(); err != nil {
			return 0, errs.NewDatabaseError("delete cards", err.Error())
		}
	}
	return len(jobs), nil
}
