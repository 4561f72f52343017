package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user_backend/internal/feature/auth/usecase"
	jwtmw "user_backend/internal/platform/jwt"
)

// mockAuthUsecase is a mock implementation of the AuthUsecase interface.
type mockAuthUsecase struct {
	IssueTokenFunc func(ctx context.Context, name, password string) (string, error)
}

// IssueToken is the mock implementation of the IssueToken method.
func (m *mockAuthUsecase) IssueToken(ctx context.Context, name, password string) (string, error) {
	if m.IssueTokenFunc != nil {
		return m.IssueTokenFunc(ctx, name, password)
	}
	return "", usecase.ErrInvalidCredentials // Default: failure
}

func TestAuthHandler_GetToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requestBody    string
		mockFunc       func(ctx context.Context, name, password string) (string, error)
		expectedStatus int
		expectedBody   gin.H
	}{
		{
			name:        "success: token issued",
			requestBody: `{"name":"admin","password":"admin"}`,
			mockFunc: func(ctx context.Context, name, password string) (string, error) {
				return "signed-token", nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   gin.H{"token": "signed-token"},
		},
		{
			name:           "failure: wrong credentials",
			requestBody:    `{"name":"admin","password":"nope"}`,
			mockFunc:       nil, // Default returns ErrInvalidCredentials
			expectedStatus: http.StatusBadRequest,
			expectedBody: gin.H{
				"operation": "Auth",
				"message":   "Not Authenticated",
				"error":     "Name or Password is not valid",
				"data":      nil,
			},
		},
		{
			name:           "failure: malformed json",
			requestBody:    `{"name":`,
			mockFunc:       nil,
			expectedStatus: http.StatusBadRequest,
			expectedBody: gin.H{
				"operation": "Auth",
				"message":   "Not Authenticated",
				"error":     "invalid request body",
				"data":      nil,
			},
		},
		{
			name:        "failure: signing error",
			requestBody: `{"name":"admin","password":"admin"}`,
			mockFunc: func(ctx context.Context, name, password string) (string, error) {
				return "", fmt.Errorf("%w: boom", usecase.ErrTokenIssue)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody: gin.H{
				"operation": "Auth",
				"message":   "Not Authenticated",
				"error":     "internal server error",
				"data":      nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(&mockAuthUsecase{IssueTokenFunc: tt.mockFunc})

			router := gin.New()
			router.POST("/getToken", handler.GetToken)

			req, _ := http.NewRequest(http.MethodPost, "/getToken", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var responseBody gin.H
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &responseBody))
			assert.Equal(t, tt.expectedBody, responseBody)
		})
	}
}

// TestGetToken_AcceptedByGuard wires the real policy, token service and guard:
// an issued token opens a protected route until it expires.
func TestGetToken_AcceptedByGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := jwtmw.NewService("integration-secret", time.Hour)
	uc := usecase.NewAuthUsecase(usecase.NewFixedCredentialPolicy("admin", "admin"), svc)
	handler := NewAuthHandler(uc)

	router := gin.New()
	router.POST("/getToken", handler.GetToken)
	router.GET("/protected", jwtmw.AuthRequired(svc), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.GetString(jwtmw.ContextSubject)})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/getToken", bytes.NewBufferString(`{"name":"admin","password":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.Token)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subject":"admin"}`, w.Body.String())

	// Tampered signature
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token+"x")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
