package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go_flashcard_study/internal/config"
	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/repository"

	"github.com/PuerkitoBio/rehttp"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// チャット Webhook の本文の上限 (文字数)
const maxWebhookContent = 2000

type FeedbackService interface {
	Submit(ctx context.Context, userID uuid.UUID, req *model.FeedbackRequest) (*model.FeedbackResponse, error)
}

type feedbackService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	webhookURL string
	client     *http.Client
}

// NewFeedbackClient は一時的なエラーと 429/5xx を指数バックオフで再試行する HTTP クライアントを返します
func NewFeedbackClient(cfg config.FeedbackConfig, base http.RoundTripper) *http.Client {
	tr := rehttp.NewTransport(
		base,
		rehttp.RetryAll(
			rehttp.RetryMaxRetries(cfg.MaxRetries),
			rehttp.RetryAny(
				rehttp.RetryTemporaryErr(),
				rehttp.RetryStatuses(http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout),
			),
		),
		rehttp.ExpJitterDelay(200*time.Millisecond, 5*time.Second),
	)
	return &http.Client{Transport: tr, Timeout: cfg.Timeout}
}

func NewFeedbackService(db *gorm.DB, userRepo repository.UserRepository, webhookURL string, client *http.Client) FeedbackService {
	return &feedbackService{db: db, userRepo: userRepo, webhookURL: webhookURL, client: client}
}

type webhookMessage struct {
	Content string `json:"content"`
}

func (s *feedbackService) Submit(ctx context.Context, userID uuid.UUID, req *model.FeedbackRequest) (*model.FeedbackResponse, error) {
	logger := middleware.GetLogger(ctx).With("category", req.Category)

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "メッセージは必須項目です。", "message", model.ErrInvalidInput)
	}

	sender := userID.String()
	if user, err := s.userRepo.FindByID(ctx, s.db, userID); err == nil {
		sender = fmt.Sprintf("%s (%s)", user.Username, userID)
	}

	content := formatFeedback(req.Category, message, sender, req.PageURL)
	if s.webhookURL == "" {
		logger.Info("Feedback received (webhook not configured)", "content", content)
		return &model.FeedbackResponse{Delivered: false}, nil
	}

	body, err := json.Marshal(webhookMessage{Content: content})
	if err != nil {
		return nil, internalError(err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, internalError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		logger.Error("Failed to deliver feedback webhook", "error", err)
		return nil, model.NewAppError("FEEDBACK_DELIVERY_FAILED", "フィードバックの送信に失敗しました。時間をおいて再度お試しください。", "", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("Feedback webhook returned non-2xx", "status", resp.StatusCode)
		return nil, model.NewAppError("FEEDBACK_DELIVERY_FAILED", "フィードバックの送信に失敗しました。時間をおいて再度お試しください。", "",
			fmt.Errorf("webhook status %d", resp.StatusCode))
	}

	logger.Info("Feedback delivered")
	return &model.FeedbackResponse{Delivered: true}, nil
}

func formatFeedback(category model.FeedbackCategory, message, sender, pageURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**[%s]** from %s\n", category, sender)
	if pageURL != "" {
		fmt.Fprintf(&b, "page: %s\n", pageURL)
	}
	b.WriteString(message)
	return truncateRunes(b.String(), maxWebhookContent)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
