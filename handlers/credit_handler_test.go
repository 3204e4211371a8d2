package handlers

import (
	"net/http"
	"testing"

	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetCreditsHandler(t *testing.T) {
	balance, err := valueobjects.ParseCredits("12.5")
	require.NoError(t, err)

	svc := new(MockCreditService)
	svc.On("Summary", mock.Anything, testUserID).Return(&types.CreditSummary{Balance: balance}, nil)

	h := NewCreditHandler(svc)
	r := buildRouter(http.MethodGet, "/api/credits", h.GetCreditsHandler, testUserID)
	w := doJSON(r, http.MethodGet, "/api/credits", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"balance":12.50,"transactions":[]}`, w.Body.String())
}

func TestAddCreditsHandler(t *testing.T) {
	ten, err := valueobjects.CreditsFromInt(10)
	require.NoError(t, err)

	svc := new(MockCreditService)
	svc.On("AddCredits", mock.Anything, testUserID, mock.MatchedBy(func(c valueobjects.Credits) bool {
		return c.Equals(ten)
	}), "").Return(ten, nil)

	h := NewCreditHandler(svc)
	r := buildRouter(http.MethodPost, "/api/credits", h.AddCreditsHandler, testUserID)

	w := doJSON(r, http.MethodPost, "/api/credits", `{"amount":"10"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"balance":10.00}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/credits", `{"amount":1.234}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
