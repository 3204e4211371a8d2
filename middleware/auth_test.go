package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJWTValidator struct {
	mock.Mock
}

func (m *MockJWTValidator) Validate(ctx context.Context, tokenString string) (string, error) {
	args := m.Called(tokenString)
	return args.String(0), args.Error(1)
}

var _ Validator = (*MockJWTValidator)(nil)

func setupAuthTestRouter(validator Validator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(AuthMiddleware(validator))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	testUserID := uuid.New().String()

	testCases := []struct {
		name           string
		header         string
		mockSetup      func(m *MockJWTValidator)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "no header",
			mockSetup:      func(m *MockJWTValidator) {},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   authCodeMissingToken,
		},
		{
			name:           "not bearer",
			header:         "Basic dXNlcjpwYXNz",
			mockSetup:      func(m *MockJWTValidator) {},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   authCodeMissingToken,
		},
		{
			name:           "empty bearer",
			header:         "Bearer   ",
			mockSetup:      func(m *MockJWTValidator) {},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   authCodeMissingToken,
		},
		{
			name:   "expired",
			header: "Bearer expired.token.value",
			mockSetup: func(m *MockJWTValidator) {
				m.On("Validate", "expired.token.value").Return("", ErrTokenExpired)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   authCodeTokenExpired,
		},
		{
			name:   "invalid",
			header: "Bearer bad.token.value",
			mockSetup: func(m *MockJWTValidator) {
				m.On("Validate", "bad.token.value").Return("", ErrTokenInvalid)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   authCodeInvalidToken,
		},
		{
			name:   "valid, case-insensitive scheme",
			header: "bearer good.token.value",
			mockSetup: func(m *MockJWTValidator) {
				m.On("Validate", "good.token.value").Return(testUserID, nil)
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			validator := new(MockJWTValidator)
			tc.mockSetup(validator)
			router := setupAuthTestRouter(validator)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tc.expectedStatus == http.StatusOK {
				assert.Equal(t, testUserID, body["user_id"])
			} else {
				assert.Equal(t, MsgUnauthorized, body["error"])
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tc.expectedCode, body["code"])
			}
			validator.AssertExpectations(t)
		})
	}
}
