// pkg/valueobjects/money.go
package valueobjects

import (
	"fmt"

	"github.com/formcraft/formcraft-backend/errors"
	"github.com/shopspring/decimal"
)

// Currency identifies the unit an amount is denominated in.
type Currency string

// CRD is the in-app credit unit used for template prices and the ledger.
const CRD Currency = "CRD"

const maxScale = 2

const (
	ErrInvalidAmount     = "INVALID_AMOUNT"
	ErrInsufficientFunds = "INSUFFICIENT_CREDITS"
)

// Credits is a non-negative credit amount with at most two decimal places.
type Credits struct {
	amount decimal.Decimal
}

// Zero credits.
var ZeroCredits = Credits{amount: decimal.Zero}

// NewCredits creates a Credits instance with validation
func NewCredits(amount decimal.Decimal) (Credits, error) {
	if amount.LessThan(decimal.Zero) {
		return Credits{}, errors.ValidationFailed(
			"invalid amount",
			"amount cannot be negative",
		)
	}

	// Ensure amount has max 2 decimal places
	if amount.Exponent() < -maxScale && !amount.Equal(amount.Round(maxScale)) {
		return Credits{}, errors.ValidationFailed(
			"invalid amount",
			"amount cannot have more than 2 decimal places",
		)
	}

	return Credits{amount: amount.Round(maxScale)}, nil
}

// ParseCredits parses a decimal string such as a NUMERIC column rendered as text.
func ParseCredits(s string) (Credits, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Credits{}, errors.ValidationFailed(
			"invalid amount format",
			err.Error(),
		)
	}
	return NewCredits(d)
}

// CreditsFromInt is NewCredits for whole amounts.
func CreditsFromInt(n int64) (Credits, error) {
	return NewCredits(decimal.NewFromInt(n))
}

// Decimal returns the underlying amount.
func (c Credits) Decimal() decimal.Decimal {
	return c.amount
}

func (c Credits) Add(other Credits) Credits {
	return Credits{amount: c.amount.Add(other.amount)}
}

// Subtract fails rather than produce a negative balance.
func (c Credits) Subtract(other Credits) (Credits, error) {
	result := c.amount.Sub(other.amount)
	if result.LessThan(decimal.Zero) {
		return Credits{}, errors.ValidationFailed(
			"Insufficient credits",
			fmt.Sprintf("balance %s is less than %s", c, other),
		).WithData("code", ErrInsufficientFunds)
	}
	return Credits{amount: result}, nil
}

func (c Credits) IsZero() bool {
	return c.amount.IsZero()
}

func (c Credits) IsPositive() bool {
	return c.amount.GreaterThan(decimal.Zero)
}

func (c Credits) LessThan(other Credits) bool {
	return c.amount.LessThan(other.amount)
}

func (c Credits) Equals(other Credits) bool {
	return c.amount.Equal(other.amount)
}

// String renders the amount with two decimals, suitable for a NUMERIC parameter.
func (c Credits) String() string {
	return c.amount.StringFixed(maxScale)
}

// Display renders the amount with its unit, e.g. "12.50 CRD".
func (c Credits) Display() string {
	return fmt.Sprintf("%s %s", c.String(), CRD)
}

// MarshalJSON encodes the amount as a JSON number.
func (c Credits) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (c *Credits) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	parsed, err := NewCredits(d)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
