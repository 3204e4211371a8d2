// Package service exposes the credit ledger to the dashboard.
package service

import (
	"context"
	"strings"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
	"github.com/formcraft/formcraft-backend/types"
)

const defaultPurchaseDescription = "Credit purchase"

type CreditService struct {
	credits store.CreditStore
}

func NewCreditService(credits store.CreditStore) *CreditService {
	return &CreditService{credits: credits}
}

// Summary returns the balance and the ledger, newest entry first. A user
// with no ledger has a zero balance.
func (s *CreditService) Summary(ctx context.Context, userID string) (*types.CreditSummary, error) {
	balance, err := s.credits.GetBalance(ctx, userID)
	if err != nil {
		return nil, store.ToAppError(err, "Credits", userID)
	}
	txs, err := s.credits.ListTransactions(ctx, userID)
	if err != nil {
		return nil, store.ToAppError(err, "Credits", userID)
	}
	if txs == nil {
		txs = []types.CreditTransaction{}
	}
	return &types.CreditSummary{Balance: balance, Transactions: txs}, nil
}

// AddCredits records a purchase and returns the new balance.
func (s *CreditService) AddCredits(ctx context.Context, userID string, amount valueobjects.Credits, description string) (valueobjects.Credits, error) {
	if !amount.IsPositive() {
		return valueobjects.Credits{}, apperrors.ValidationFailed("Amount must be greater than zero", amount.String())
	}
	if strings.TrimSpace(description) == "" {
		description = defaultPurchaseDescription
	}
	balance, err := s.credits.AddCredits(ctx, userID, amount, description)
	if err != nil {
		return valueobjects.Credits{}, store.ToAppError(err, "Credits", userID)
	}
	logger.GetLogger().Infow("Credits added", "userID", userID, "amount", amount.Display(), "balance", balance.Display())
	return balance, nil
}

// UseCredits debits amount against referenceID. The balance never goes
// negative; a short balance is a validation error.
func (s *CreditService) UseCredits(ctx context.Context, userID string, amount valueobjects.Credits, referenceID, description string) (valueobjects.Credits, error) {
	if !amount.IsPositive() {
		return valueobjects.Credits{}, apperrors.ValidationFailed("Amount must be greater than zero", amount.String())
	}
	balance, err := s.credits.UseCredits(ctx, userID, amount, referenceID, description)
	if err != nil {
		return valueobjects.Credits{}, store.ToAppError(err, "Credits", userID)
	}
	return balance, nil
}
