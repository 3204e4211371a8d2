package service

import (
	"context"
	"net/http"
	"testing"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/internal/store/mocks"
	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCredits(t *testing.T, s string) valueobjects.Credits {
	t.Helper()
	c, err := valueobjects.ParseCredits(s)
	require.NoError(t, err)
	return c
}

func TestSummary_EmptyLedger(t *testing.T) {
	credits := new(mocks.CreditStore)
	svc := NewCreditService(credits)
	ctx := context.Background()

	credits.On("GetBalance", ctx, "user-1").Return(valueobjects.ZeroCredits, nil)
	credits.On("ListTransactions", ctx, "user-1").Return(nil, nil)

	summary, err := svc.Summary(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, summary.Balance.IsZero())
	assert.Equal(t, []types.CreditTransaction{}, summary.Transactions)
	credits.AssertExpectations(t)
}

func TestAddCredits(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults description", func(t *testing.T) {
		credits := new(mocks.CreditStore)
		amount := mustCredits(t, "10")
		credits.On("AddCredits", ctx, "user-1", amount, defaultPurchaseDescription).Return(mustCredits(t, "25"), nil)

		balance, err := NewCreditService(credits).AddCredits(ctx, "user-1", amount, "")
		require.NoError(t, err)
		assert.Equal(t, "25.00", balance.String())
		credits.AssertExpectations(t)
	})

	t.Run("rejects zero", func(t *testing.T) {
		credits := new(mocks.CreditStore)
		_, err := NewCreditService(credits).AddCredits(ctx, "user-1", valueobjects.ZeroCredits, "")

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.GetHTTPStatus())
		credits.AssertNotCalled(t, "AddCredits")
	})
}

func TestUseCredits_Insufficient(t *testing.T) {
	ctx := context.Background()
	credits := new(mocks.CreditStore)
	amount := mustCredits(t, "100")
	credits.On("UseCredits", ctx, "user-1", amount, "ref-1", "export").Return(valueobjects.Credits{}, store.ErrInsufficientCredits)

	_, err := NewCreditService(credits).UseCredits(ctx, "user-1", amount, "ref-1", "export")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Insufficient credits", appErr.Message)
	assert.Equal(t, "INSUFFICIENT_CREDITS", appErr.Data["code"])
}
