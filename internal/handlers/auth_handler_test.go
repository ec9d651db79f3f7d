package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"go_flashcard_study/internal/handlers"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/service/mocks"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(h *handlers.AuthHandler) *chi.Mux {
	router := chi.NewRouter()
	router.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Get("/verify", h.VerifyAccount)
		r.Post("/login", h.Login)
		r.Post("/forgot-password", h.RequestPasswordReset)
	})
	return router
}

func TestAuthHandler_Register(t *testing.T) {
	mockService := mocks.NewAuthService(t)
	router := newAuthRouter(handlers.NewAuthHandler(mockService))

	validReq := model.RegisterRequest{Username: "alice01", DisplayName: "Alice", Email: "alice@example.com", Password: "password123"}

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func()
		expectedStatus int
		expectedCode   string
		expectedField  string
	}{
		{
			name: "正常系: 登録",
			body: validReq,
			setupMock: func() {
				mockService.On("Register", mock.Anything, &validReq).Return(&model.User{UserID: uuid.New()}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "異常系: メールアドレス形式",
			body:           model.RegisterRequest{Username: "alice01", DisplayName: "Alice", Email: "not-an-email", Password: "password123"},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedField:  "email",
		},
		{
			name:           "異常系: 短いパスワード",
			body:           model.RegisterRequest{Username: "alice01", DisplayName: "Alice", Email: "alice@example.com", Password: "short"},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedField:  "password",
		},
		{
			name: "異常系: メールアドレス重複",
			body: validReq,
			setupMock: func() {
				mockService.On("Register", mock.Anything, &validReq).
					Return(nil, model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "DUPLICATE_EMAIL",
			expectedField:  "email",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()
			rr := executeRequest(router, createRequest(t, http.MethodPost, "/api/v1/auth/register", tc.body, nil))
			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedCode != "" {
				detail := decodeError(t, rr)
				assert.Equal(t, tc.expectedCode, detail.Code)
				assert.Equal(t, tc.expectedField, detail.Field)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	mockService := mocks.NewAuthService(t)
	router := newAuthRouter(handlers.NewAuthHandler(mockService))
	req := model.LoginRequest{Email: "alice@example.com", Password: "password123"}

	t.Run("正常系: トークンを返す", func(t *testing.T) {
		mockService.On("Login", mock.Anything, &req).
			Return(&model.LoginResponse{AccessToken: "jwt", TokenType: "Bearer", ExpiresIn: 900}, nil).Once()

		rr := executeRequest(router, createRequest(t, http.MethodPost, "/api/v1/auth/login", req, nil))
		require.Equal(t, http.StatusOK, rr.Code)
		var got model.LoginResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "jwt", got.AccessToken)
		assert.Equal(t, int64(900), got.ExpiresIn)
	})

	t.Run("異常系: 認証失敗", func(t *testing.T) {
		mockService.On("Login", mock.Anything, &req).
			Return(nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrUnauthorized)).Once()

		rr := executeRequest(router, createRequest(t, http.MethodPost, "/api/v1/auth/login", req, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "AUTHENTICATION_FAILED", decodeError(t, rr).Code)
	})
}

func TestAuthHandler_VerifyAccount(t *testing.T) {
	mockService := mocks.NewAuthService(t)
	router := newAuthRouter(handlers.NewAuthHandler(mockService))

	rr := executeRequest(router, createRequest(t, http.MethodGet, "/api/v1/auth/verify", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	mockService.On("VerifyAccount", mock.Anything, "abc123").Return(nil).Once()
	rr = executeRequest(router, createRequest(t, http.MethodGet, "/api/v1/auth/verify?token=abc123", nil, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthHandler_RequestPasswordReset(t *testing.T) {
	mockService := mocks.NewAuthService(t)
	router := newAuthRouter(handlers.NewAuthHandler(mockService))

	mockService.On("RequestPasswordReset", mock.Anything, "nobody@example.com").Return(nil).Once()
	rr := executeRequest(router, createRequest(t, http.MethodPost, "/api/v1/auth/forgot-password", model.ForgotPasswordRequest{Email: "nobody@example.com"}, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
