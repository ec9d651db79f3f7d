package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go_flashcard_study/internal/config"
	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject string, expiresAt time.Time, secret string) string {
	t.Helper()
	claims := model.JWTCustomClaims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// echoUserID は認証済みユーザーIDをボディに書き出すハンドラ
func echoUserID(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Write([]byte(userID.String()))
}

func TestJWTAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{SecretKey: testSecret}}
	handler := middleware.JWTAuthMiddleware(cfg)(http.HandlerFunc(echoUserID))
	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "正常系: 有効なトークン",
			header:     "Bearer " + signToken(t, userID.String(), time.Now().Add(time.Hour), testSecret),
			wantStatus: http.StatusOK,
			wantBody:   userID.String(),
		},
		{
			name:       "異常系: ヘッダーなし",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "UNAUTHORIZED",
		},
		{
			name:       "異常系: Bearer 以外",
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "UNAUTHORIZED",
		},
		{
			name:       "異常系: 有効期限切れ",
			header:     "Bearer " + signToken(t, userID.String(), time.Now().Add(-time.Minute), testSecret),
			wantStatus: http.StatusUnauthorized,
			wantBody:   "有効期限",
		},
		{
			name:       "異常系: 署名の鍵が違う",
			header:     "Bearer " + signToken(t, userID.String(), time.Now().Add(time.Hour), "other"),
			wantStatus: http.StatusUnauthorized,
			wantBody:   "INVALID_TOKEN",
		},
		{
			name:       "異常系: sub が UUID でない",
			header:     "Bearer " + signToken(t, "not-a-uuid", time.Now().Add(time.Hour), testSecret),
			wantStatus: http.StatusUnauthorized,
			wantBody:   "INVALID_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestDevUserContextMiddleware(t *testing.T) {
	handler := middleware.DevUserContextMiddleware(http.HandlerFunc(echoUserID))
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", userID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserIDFromContext_Missing(t *testing.T) {
	_, err := middleware.GetUserIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}
