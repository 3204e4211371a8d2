package handlers

import (
	"net/http"
	"testing"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateTemplateHandler(t *testing.T) {
	svc := new(MockTemplateService)
	svc.On("InstantiateFromForm", mock.Anything, testUserID, types.CreateTemplateRequest{FormID: "form-1", Name: "Contact"}).
		Return(&types.FormTemplate{ID: "tmpl-1", Name: "Contact", CreatedBy: testUserID}, nil)
	svc.On("InstantiateFromForm", mock.Anything, testUserID, types.CreateTemplateRequest{FormID: "form-1"}).
		Return(nil, apperrors.ValidationFailed("Form ID and name are required", ""))

	h := NewTemplateHandler(svc)
	r := buildRouter(http.MethodPost, "/api/templates/create", h.CreateTemplateHandler, testUserID)

	w := doJSON(r, http.MethodPost, "/api/templates/create", map[string]string{"formId": "form-1", "name": "Contact"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tmpl-1", decodeBody(t, w)["template"].(map[string]interface{})["id"])

	w = doJSON(r, http.MethodPost, "/api/templates/create", map[string]string{"formId": "form-1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Form ID and name are required", decodeBody(t, w)["error"])
	svc.AssertExpectations(t)
}

func TestListTemplatesHandler(t *testing.T) {
	svc := new(MockTemplateService)
	svc.On("ListTemplates", mock.Anything, "creator-9").Return([]types.FormTemplate{{ID: "tmpl-1"}}, nil)

	h := NewTemplateHandler(svc)
	r := buildRouter(http.MethodGet, "/api/templates", h.ListTemplatesHandler, testUserID)
	w := doJSON(r, http.MethodGet, "/api/templates?userId=creator-9", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["templates"], 1)

	unauth := buildRouter(http.MethodGet, "/api/templates", h.ListTemplatesHandler, "")
	w = doJSON(unauth, http.MethodGet, "/api/templates", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertExpectations(t)
}

func TestSetPremiumHandler(t *testing.T) {
	price, err := valueobjects.ParseCredits("4.50")
	require.NoError(t, err)

	svc := new(MockTemplateService)
	svc.On("SetPremium", mock.Anything, "tmpl-1", testUserID, mock.MatchedBy(func(p valueobjects.Credits) bool {
		return p.Equals(price)
	})).Return(&types.FormTemplate{ID: "tmpl-1", IsPremium: true, Price: price}, nil)

	h := NewTemplateHandler(svc)
	r := buildRouter(http.MethodPut, "/api/templates/:id/premium", h.SetPremiumHandler, testUserID)

	w := doJSON(r, http.MethodPut, "/api/templates/tmpl-1/premium", `{"price": 4.5}`)
	require.Equal(t, http.StatusOK, w.Code)
	tmpl := decodeBody(t, w)["template"].(map[string]interface{})
	assert.Equal(t, true, tmpl["isPremium"])
	assert.Equal(t, 4.5, tmpl["price"])

	w = doJSON(r, http.MethodPut, "/api/templates/tmpl-1/premium", `{"price": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestPurchaseTemplateHandler(t *testing.T) {
	left, err := valueobjects.CreditsFromInt(6)
	require.NoError(t, err)

	svc := new(MockTemplateService)
	svc.On("Purchase", mock.Anything, testUserID, "tmpl-1").Return(left, nil)
	svc.On("Purchase", mock.Anything, testUserID, "tmpl-2").
		Return(valueobjects.ZeroCredits, apperrors.ValidationFailed("Insufficient credits", "").WithData("code", "INSUFFICIENT_CREDITS"))

	h := NewTemplateHandler(svc)
	r := buildRouter(http.MethodPost, "/api/templates/:id/purchase", h.PurchaseTemplateHandler, testUserID)

	w := doJSON(r, http.MethodPost, "/api/templates/tmpl-1/purchase", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"balance":6.00}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/templates/tmpl-2/purchase", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INSUFFICIENT_CREDITS", decodeBody(t, w)["code"])
}

func TestInstantiateTemplateHandler(t *testing.T) {
	name := "My copy"
	svc := new(MockTemplateService)
	svc.On("InstantiateFromTemplate", mock.Anything, "tmpl-1", testUserID, types.InstantiateTemplateRequest{Name: &name}).
		Return(sampleForm(), nil)
	svc.On("InstantiateFromTemplate", mock.Anything, "tmpl-2", testUserID, types.InstantiateTemplateRequest{}).
		Return(nil, apperrors.Forbidden("Template has not been purchased", ""))

	h := NewTemplateHandler(svc)
	r := buildRouter(http.MethodPost, "/api/templates/:id/instantiate", h.InstantiateTemplateHandler, testUserID)

	w := doJSON(r, http.MethodPost, "/api/templates/tmpl-1/instantiate", map[string]string{"name": "My copy"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/templates/tmpl-2/instantiate", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertExpectations(t)
}
