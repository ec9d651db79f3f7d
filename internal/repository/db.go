package repository

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"go_flashcard_study/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB は Postgres へ接続し、slog 経由でログを出す *gorm.DB を返します
func NewDB(databaseURL string, appLogger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         NewGormLogger(appLogger),
		TranslateError: true,
	})
	if err != nil {
		appLogger.Error("Failed to connect to database with GORM", slog.Any("error", err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		return nil, err
	}

	if err = sqlDB.Ping(); err != nil {
		appLogger.Error("Error pinging database", slog.Any("error", err))
		sqlDB.Close()
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	appLogger.Info("Database connection established with GORM")
	return db, nil
}

// NewGormLogger は slog-gorm のロガーを作ります。APP_ENV=dev のときは全SQLを出力します。
func NewGormLogger(appLogger *slog.Logger) gormlogger.Interface {
	opts := []slogGorm.Option{
		slogGorm.WithHandler(appLogger.Handler()),
		slogGorm.WithSlowThreshold(500 * time.Millisecond),
	}
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		opts = append(opts, slogGorm.WithTraceAll())
	}
	return slogGorm.New(opts...)
}

// Models はマイグレーション対象のテーブル一覧
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.UserVerificationToken{},
		&model.PasswordResetToken{},
		&model.Flashcard{},
		&model.FriendConnection{},
		&model.Notification{},
		&model.FavoriteFolder{},
		&model.Quest{},
		&model.UserQuest{},
		&model.UserStreak{},
	}
}

// Migrate は全テーブルを AutoMigrate します
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// isDuplicateKey は一意制約違反かどうかを判定します
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
