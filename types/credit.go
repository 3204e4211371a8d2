package types

import (
	"time"

	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
)

type CreditTransactionType string

const (
	CreditTransactionPurchase CreditTransactionType = "purchase"
	CreditTransactionUsage    CreditTransactionType = "usage"
	CreditTransactionRefund   CreditTransactionType = "refund"
)

func (t CreditTransactionType) IsValid() bool {
	switch t {
	case CreditTransactionPurchase, CreditTransactionUsage, CreditTransactionRefund:
		return true
	default:
		return false
	}
}

// CreditTransaction is one ledger entry. Amount is always positive; the type
// says which direction it moved the balance.
type CreditTransaction struct {
	ID              string                `json:"id"`
	UserID          string                `json:"userId"`
	Amount          valueobjects.Credits  `json:"amount"`
	TransactionType CreditTransactionType `json:"transactionType"`
	ReferenceID     *string               `json:"referenceId,omitempty"`
	Description     *string               `json:"description,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// CreditSummary is the body of GET /api/credits.
type CreditSummary struct {
	Balance      valueobjects.Credits `json:"balance"`
	Transactions []CreditTransaction  `json:"transactions"`
}

// AddCreditsRequest is the body of POST /api/credits.
type AddCreditsRequest struct {
	Amount      valueobjects.Credits `json:"amount"`
	Description string               `json:"description,omitempty"`
}

// PurchasedTemplate records that a user bought a premium template.
type PurchasedTemplate struct {
	UserID      string    `json:"userId"`
	TemplateID  string    `json:"templateId"`
	PurchasedAt time.Time `json:"purchasedAt"`
}
