package service_test // 公開APIだけを使ってテストする

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go_flashcard_study/internal/config"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/repository/mocks"
	"go_flashcard_study/internal/service"
	servicemocks "go_flashcard_study/internal/service/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// --- テストスイートの定義 ---
type AuthServiceTestSuite struct {
	suite.Suite

	db            *gorm.DB
	mockUserRepo  *mocks.UserRepository
	mockTokenRepo *mocks.TokenRepository
	mockMailer    *servicemocks.Mailer
	cfg           *config.Config
	authService   service.AuthService
}

// SetupSuite はトランザクションを張るためだけのインメモリDBを用意します (テーブルは不要)
func (s *AuthServiceTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	s.Require().NoError(err)
	s.db = db
}

// 各テストの前にモックを作り直す
func (s *AuthServiceTestSuite) SetupTest() {
	s.mockUserRepo = new(mocks.UserRepository)
	s.mockTokenRepo = new(mocks.TokenRepository)
	s.mockMailer = new(servicemocks.Mailer)

	s.cfg = &config.Config{
		App: config.AppConfig{Name: "FlashStudy", FrontendURL: "http://localhost:3000"},
		JWT: config.JWTConfig{
			SecretKey:      "test-secret",
			AccessTokenTTL: 15 * time.Minute,
		},
	}

	s.authService = service.NewAuthService(s.db, s.mockUserRepo, s.mockTokenRepo, s.mockMailer, s.cfg)
}

func (s *AuthServiceTestSuite) assertMocks() {
	s.mockUserRepo.AssertExpectations(s.T())
	s.mockTokenRepo.AssertExpectations(s.T())
	s.mockMailer.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) requireAppError(err error, code string) {
	var appErr *model.AppError
	s.Require().ErrorAs(err, &appErr)
	s.Equal(code, appErr.Detail.Code)
}

func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func activeUser(password string, active bool) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &model.User{
		UserID:       uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		IsActive:     active,
	}
}

func (s *AuthServiceTestSuite) TestRegister() {
	req := &model.RegisterRequest{Username: "alice", DisplayName: " Alice ", Email: "Alice@Example.com", Password: "password123"}

	testCases := []struct {
		name        string
		setupMocks  func()
		checkResult func(user *model.User, err error)
	}{
		{
			name: "正常系: 登録して有効化メールを送る",
			setupMocks: func() {
				s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "alice@example.com").Return(nil, model.ErrNotFound).Once()
				s.mockUserRepo.On("FindByUsername", mock.Anything, mock.Anything, "alice").Return(nil, model.ErrNotFound).Once()
				s.mockUserRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*model.User")).Return(nil).Once()
				s.mockTokenRepo.On("CreateVerificationToken", mock.Anything, mock.Anything, mock.MatchedBy(func(tok *model.UserVerificationToken) bool {
					return len(tok.Token) == 64 && tok.ExpiresAt.After(time.Now().Add(23*time.Hour))
				})).Return(nil).Once()
				s.mockMailer.On("Send", mock.Anything, "alice@example.com", mock.Anything, mock.MatchedBy(func(body string) bool {
					return strings.Contains(body, "http://localhost:3000/verify-email?token=")
				})).Return(nil).Once()
			},
			checkResult: func(user *model.User, err error) {
				s.Require().NoError(err)
				s.Equal("alice@example.com", user.Email)
				s.Equal("Alice", user.DisplayName)
				s.False(user.IsActive)
				s.NotEqual("password123", user.PasswordHash)
			},
		},
		{
			name: "異常系: メールアドレスが重複している",
			setupMocks: func() {
				s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "alice@example.com").Return(&model.User{}, nil).Once()
			},
			checkResult: func(user *model.User, err error) {
				s.Nil(user)
				s.ErrorIs(err, model.ErrConflict)
				s.requireAppError(err, "DUPLICATE_EMAIL")
			},
		},
		{
			name: "異常系: ユーザー名が重複している",
			setupMocks: func() {
				s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "alice@example.com").Return(nil, model.ErrNotFound).Once()
				s.mockUserRepo.On("FindByUsername", mock.Anything, mock.Anything, "alice").Return(&model.User{}, nil).Once()
			},
			checkResult: func(user *model.User, err error) {
				s.Nil(user)
				s.requireAppError(err, "DUPLICATE_USERNAME")
			},
		},
		{
			name: "異常系: メール送信に失敗したら登録もロールバックされる",
			setupMocks: func() {
				s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "alice@example.com").Return(nil, model.ErrNotFound).Once()
				s.mockUserRepo.On("FindByUsername", mock.Anything, mock.Anything, "alice").Return(nil, model.ErrNotFound).Once()
				s.mockUserRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
				s.mockTokenRepo.On("CreateVerificationToken", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
				s.mockMailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
			},
			checkResult: func(user *model.User, err error) {
				s.Nil(user)
				s.requireAppError(err, "EMAIL_SEND_FAILED")
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			tc.setupMocks()

			user, err := s.authService.Register(context.Background(), req)

			tc.checkResult(user, err)
			s.assertMocks()
		})
	}
}

func (s *AuthServiceTestSuite) TestLogin() {
	s.Run("正常系: JWT を発行する", func() {
		s.SetupTest()
		user := activeUser("password123", true)
		s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "alice@example.com").Return(user, nil).Once()

		resp, err := s.authService.Login(context.Background(), &model.LoginRequest{Email: "ALICE@example.com", Password: "password123"})
		s.Require().NoError(err)
		s.Equal("Bearer", resp.TokenType)
		s.Equal(int64(900), resp.ExpiresIn)

		claims := &model.JWTCustomClaims{}
		_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		s.Require().NoError(err)
		s.Equal(user.UserID.String(), claims.Subject)
		s.Equal("alice", claims.Username)
		s.assertMocks()
	})

	s.Run("異常系: パスワードが違う", func() {
		s.SetupTest()
		s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "alice@example.com").Return(activeUser("password123", true), nil).Once()

		_, err := s.authService.Login(context.Background(), &model.LoginRequest{Email: "alice@example.com", Password: "wrong"})
		s.ErrorIs(err, model.ErrUnauthorized)
	})

	s.Run("異常系: ユーザーが存在しない場合も同じエラー", func() {
		s.SetupTest()
		s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "nobody@example.com").Return(nil, model.ErrNotFound).Once()

		_, err := s.authService.Login(context.Background(), &model.LoginRequest{Email: "nobody@example.com", Password: "x"})
		s.ErrorIs(err, model.ErrUnauthorized)
		s.requireAppError(err, "AUTHENTICATION_FAILED")
	})

	s.Run("異常系: 未有効化のアカウント", func() {
		s.SetupTest()
		s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "alice@example.com").Return(activeUser("password123", false), nil).Once()

		_, err := s.authService.Login(context.Background(), &model.LoginRequest{Email: "alice@example.com", Password: "password123"})
		s.ErrorIs(err, model.ErrForbidden)
	})
}

func (s *AuthServiceTestSuite) TestVerifyAccount() {
	userID := uuid.New()

	s.Run("正常系: 有効化してトークンを消す", func() {
		s.SetupTest()
		s.mockTokenRepo.On("FindVerificationToken", mock.Anything, mock.Anything, "tok").
			Return(&model.UserVerificationToken{Token: "tok", UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()
		s.mockUserRepo.On("Update", mock.Anything, mock.Anything, userID, map[string]interface{}{"is_active": true}).Return(nil).Once()
		s.mockTokenRepo.On("DeleteVerificationToken", mock.Anything, mock.Anything, "tok").Return(nil).Once()

		s.NoError(s.authService.VerifyAccount(context.Background(), "tok"))
		s.assertMocks()
	})

	s.Run("異常系: 期限切れトークンは削除して INVALID_TOKEN", func() {
		s.SetupTest()
		s.mockTokenRepo.On("FindVerificationToken", mock.Anything, mock.Anything, "old").
			Return(&model.UserVerificationToken{Token: "old", UserID: userID, ExpiresAt: time.Now().Add(-time.Minute)}, nil).Once()
		s.mockTokenRepo.On("DeleteVerificationToken", mock.Anything, mock.Anything, "old").Return(nil).Once()

		err := s.authService.VerifyAccount(context.Background(), "old")
		s.ErrorIs(err, model.ErrInvalidInput)
		s.requireAppError(err, "INVALID_TOKEN")
		s.mockUserRepo.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		s.assertMocks()
	})

	s.Run("異常系: 存在しないトークン", func() {
		s.SetupTest()
		s.mockTokenRepo.On("FindVerificationToken", mock.Anything, mock.Anything, "missing").Return(nil, model.ErrNotFound).Once()

		s.ErrorIs(s.authService.VerifyAccount(context.Background(), "missing"), model.ErrInvalidInput)
	})
}

func (s *AuthServiceTestSuite) TestPasswordReset() {
	s.Run("正常系: 未登録のメールアドレスでもエラーにしない", func() {
		s.SetupTest()
		s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "nobody@example.com").Return(nil, model.ErrNotFound).Once()

		s.NoError(s.authService.RequestPasswordReset(context.Background(), "nobody@example.com"))
		s.mockMailer.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("正常系: リセットメールを送る", func() {
		s.SetupTest()
		user := activeUser("password123", true)
		s.mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "alice@example.com").Return(user, nil).Once()
		s.mockTokenRepo.On("CreatePasswordResetToken", mock.Anything, mock.Anything, mock.MatchedBy(func(tok *model.PasswordResetToken) bool {
			return tok.UserID == user.UserID
		})).Return(nil).Once()
		s.mockMailer.On("Send", mock.Anything, "alice@example.com", mock.Anything, mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "/reset-password?token=")
		})).Return(nil).Once()

		s.NoError(s.authService.RequestPasswordReset(context.Background(), "alice@example.com"))
		s.assertMocks()
	})

	s.Run("正常系: パスワードを更新し、同じユーザーのリセットトークンを全て消す", func() {
		s.SetupTest()
		userID := uuid.New()
		s.mockTokenRepo.On("FindPasswordResetToken", mock.Anything, mock.Anything, "reset").
			Return(&model.PasswordResetToken{Token: "reset", UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()
		s.mockUserRepo.On("Update", mock.Anything, mock.Anything, userID, mock.MatchedBy(func(updates map[string]interface{}) bool {
			hash, ok := updates["password_hash"].(string)
			return ok && bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword1")) == nil
		})).Return(nil).Once()
		s.mockTokenRepo.On("DeletePasswordResetTokensByUser", mock.Anything, mock.Anything, userID).Return(nil).Once()

		s.NoError(s.authService.ResetPassword(context.Background(), "reset", "newpassword1"))
		s.assertMocks()
	})

	s.Run("異常系: 期限切れのリセットトークン", func() {
		s.SetupTest()
		s.mockTokenRepo.On("FindPasswordResetToken", mock.Anything, mock.Anything, "old").
			Return(&model.PasswordResetToken{Token: "old", UserID: uuid.New(), ExpiresAt: time.Now().Add(-time.Second)}, nil).Once()
		s.mockTokenRepo.On("DeletePasswordResetToken", mock.Anything, mock.Anything, "old").Return(nil).Once()

		s.ErrorIs(s.authService.ResetPassword(context.Background(), "old", "newpassword1"), model.ErrInvalidInput)
		s.assertMocks()
	})
}

func (s *AuthServiceTestSuite) TestPurgeExpiredTokens() {
	s.mockTokenRepo.On("DeleteExpired", mock.Anything, mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(4), nil).Once()

	n, err := s.authService.PurgeExpiredTokens(context.Background())
	s.NoError(err)
	s.Equal(int64(4), n)
	s.assertMocks()
}
