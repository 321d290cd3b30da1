package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amankv/dime-backend/internal/dto"
	"github.com/amankv/dime-backend/internal/errs"
	"github.com/amankv/dime-backend/internal/models"
)

type chatTransactionStore interface {
	Get(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, error)
}

type chatCardLister interface {
	ListCards(ctx context.Context, uid string) ([]dto.CardView, error)
}

type chatService struct {
	txs   chatTransactionStore
	cards chatCardLister
	gen   textGenerator
}

func NewChatService(txs chatTransactionStore, cards chatCardLister, gen textGenerator) *chatService {
	return &chatService{txs: txs, cards: cards, gen: gen}
}

// Ask answers a question grounded in the user's recent transactions and
// saved cards.
func (s *chatService) Ask(ctx context.Context, uid, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errs.NewValidationError("message is required")
	}

	txs, err := s.txs.Get(ctx, uid, dto.TransactionQuery{Limit: 20})
	if err != nil {
		if isDatabaseError(err) {
			return chatUnavailableReply, nil
		}
		return "", err
	}
	cards, err := s.cards.ListCards(ctx, uid)
	if err != nil {
		if isDatabaseError(err) {
			return chatUnavailableReply, nil
		}
		return "", err
	}

	return s.gen.GenerateText(ctx, buildChatPrompt(txs, cards, message))
}

// chatUnavailableReply is returned instead of an error when the store
// is down. The chat widget renders it like any other assistant turn.
const chatUnavailableReply = "I'm sorry, I don't have access to your financial records right now. Please make sure your account is connected."

func isDatabaseError(err error) bool {
	var dbErr *errs.DatabaseError
	return errors.As(err, &dbErr)
}

func buildChatPrompt(txs []models.Transaction, cards []dto.CardView, message string) string {
	var b strings.Builder
	b.WriteString("You are Dime, a helpful financial assistant. You help users manage their cards and understand their spending.\n\n")
	b.WriteString("Here is the user's financial data:\n\n")

	b.WriteString("RECENT TRANSACTIONS:\n")
	if len(txs) == 0 {
		b.WriteString("No recent transactions found.\n")
	}
	for _, tx := range txs {
		category := tx.SpendCategory
		if category == "" {
			category = "Uncategorized"
		}
		fmt.Fprintf(&b, "- %s: %s - $%.2f (%s)\n", tx.DateTime, tx.MerchantName, tx.TotalAmount, category)
	}

	b.WriteString("\nSAVED CARDS:\n")
	if len(cards) == 0 {
		b.WriteString("No cards saved.\n")
	}
	for _, card := range cards {
		fmt.Fprintf(&b, "- %s card ending in %s (Holder: %s)\n", card.CardType, card.LastFour, card.Name)
	}

	b.WriteString("\nInstructions: Use the data above to answer the user's question accurately. If you don't know the answer based on the data, say so. Keep your response concise and helpful.")
	fmt.Fprintf(&b, "\n\nUser Question: %s\n\nAssistant Response:", message)
	return b.String()
}
