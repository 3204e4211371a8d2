package postgres

import (
	"context"
	"fmt"

	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/jackc/pgx/v5"
)

// CreditStore implements store.CreditStore. Balance changes lock the user's
// row for the duration of the transaction.
type CreditStore struct {
	db DBTX
}

func NewCreditStore(db DBTX) *CreditStore {
	return &CreditStore{db: db}
}

var _ store.CreditStore = (*CreditStore)(nil)

func (s *CreditStore) GetBalance(ctx context.Context, userID string) (valueobjects.Credits, error) {
	var amount string
	err := s.db.QueryRow(ctx, `SELECT amount::text FROM user_credits WHERE user_id = $1`, userID).Scan(&amount)
	if err != nil {
		if err = mapError(err); err == store.ErrNotFound {
			return valueobjects.ZeroCredits, nil
		}
		return valueobjects.Credits{}, err
	}
	return valueobjects.ParseCredits(amount)
}

func (s *CreditStore) ListTransactions(ctx context.Context, userID string) ([]types.CreditTransaction, error) {
	query := `
		SELECT id::text, user_id, amount::text, transaction_type, reference_id, description, created_at
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	txs := make([]types.CreditTransaction, 0)
	for rows.Next() {
		var (
			t      types.CreditTransaction
			amount string
			kind   string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &amount, &kind, &t.ReferenceID, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		if t.Amount, err = valueobjects.ParseCredits(amount); err != nil {
			return nil, fmt.Errorf("transaction %s amount: %w", t.ID, err)
		}
		t.TransactionType = types.CreditTransactionType(kind)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (s *CreditStore) AddCredits(ctx context.Context, userID string, amount valueobjects.Credits, description string) (valueobjects.Credits, error) {
	var balance valueobjects.Credits
	err := withTx(ctx, s.db, func(tx pgx.Tx) error {
		var raw string
		err := tx.QueryRow(ctx, `
			INSERT INTO user_credits (user_id, amount)
			VALUES ($1, $2::text::numeric)
			ON CONFLICT (user_id) DO UPDATE
			SET amount = user_credits.amount + EXCLUDED.amount, updated_at = NOW()
			RETURNING amount::text`,
			userID, amount.String(),
		).Scan(&raw)
		if err != nil {
			return mapError(err)
		}
		if balance, err = valueobjects.ParseCredits(raw); err != nil {
			return err
		}
		return insertTransaction(ctx, tx, userID, amount, types.CreditTransactionPurchase, "", description)
	})
	return balance, err
}

func (s *CreditStore) UseCredits(ctx context.Context, userID string, amount valueobjects.Credits, referenceID, description string) (valueobjects.Credits, error) {
	var balance valueobjects.Credits
	err := withTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		balance, err = debit(ctx, tx, userID, amount)
		if err != nil {
			return err
		}
		return insertTransaction(ctx, tx, userID, amount, types.CreditTransactionUsage, referenceID, description)
	})
	return balance, err
}

func (s *CreditStore) HasPurchased(ctx context.Context, userID, templateID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchased_templates WHERE user_id = $1 AND template_id = $2)`,
		userID, templateID,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

func (s *CreditStore) PurchaseTemplate(ctx context.Context, userID, templateID string, price valueobjects.Credits) (valueobjects.Credits, error) {
	var balance valueobjects.Credits
	err := withTx(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO purchased_templates (user_id, template_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, template_id) DO NOTHING`,
			userID, templateID,
		)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return store.ErrConflict
		}

		if balance, err = debit(ctx, tx, userID, price); err != nil {
			return err
		}
		return insertTransaction(ctx, tx, userID, price, types.CreditTransactionUsage, templateID, "Template purchase")
	})
	return balance, err
}

// debit locks the balance row and subtracts amount, failing with
// ErrInsufficientCredits rather than going negative.
func debit(ctx context.Context, tx pgx.Tx, userID string, amount valueobjects.Credits) (valueobjects.Credits, error) {
	var raw string
	err := tx.QueryRow(ctx, `SELECT amount::text FROM user_credits WHERE user_id = $1 FOR UPDATE`, userID).Scan(&raw)
	current := valueobjects.ZeroCredits
	switch mapped := mapError(err); {
	case mapped == store.ErrNotFound:
	case mapped != nil:
		return valueobjects.Credits{}, mapped
	default:
		if current, err = valueobjects.ParseCredits(raw); err != nil {
			return valueobjects.Credits{}, err
		}
	}

	if current.LessThan(amount) {
		return valueobjects.Credits{}, store.ErrInsufficientCredits
	}

	err = tx.QueryRow(ctx, `
		UPDATE user_credits SET amount = amount - $2::text::numeric, updated_at = NOW()
		WHERE user_id = $1
		RETURNING amount::text`,
		userID, amount.String(),
	).Scan(&raw)
	if err != nil {
		return valueobjects.Credits{}, mapError(err)
	}
	return valueobjects.ParseCredits(raw)
}

func insertTransaction(ctx context.Context, tx pgx.Tx, userID string, amount valueobjects.Credits, kind types.CreditTransactionType, referenceID, description string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO credit_transactions (user_id, amount, transaction_type, reference_id, description)
		VALUES ($1, $2::text::numeric, $3, $4, $5)`,
		userID, amount.String(), string(kind), nullable(referenceID), nullable(description),
	)
	return mapError(err)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
