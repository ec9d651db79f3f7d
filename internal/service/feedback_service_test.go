package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"go_flashcard_study/internal/config"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackService_Submit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 0)
	req := &model.FeedbackRequest{Category: model.FeedbackBug, Message: " 表示が崩れます ", PageURL: "https://example.com/study"}

	t.Run("正常系: 503 の後に再試行して届く", func(t *testing.T) {
		var calls int32
		var got webhookMessage
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := NewFeedbackClient(config.FeedbackConfig{MaxRetries: 2, Timeout: 10 * time.Second}, http.DefaultTransport)
		svc := NewFeedbackService(env.db, repository.NewGormUserRepository(), server.URL, client)

		resp, err := svc.Submit(ctx, alice.UserID, req)
		require.NoError(t, err)
		assert.True(t, resp.Delivered)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
		assert.Equal(t, "**[bug]** from alice ("+alice.UserID.String()+")\npage: https://example.com/study\n表示が崩れます", got.Content)
	})

	t.Run("異常系: 再試行しても失敗する", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := NewFeedbackClient(config.FeedbackConfig{MaxRetries: 1, Timeout: 10 * time.Second}, http.DefaultTransport)
		svc := NewFeedbackService(env.db, repository.NewGormUserRepository(), server.URL, client)

		_, err := svc.Submit(ctx, alice.UserID, req)
		requireAppCode(t, err, "FEEDBACK_DELIVERY_FAILED")
	})

	t.Run("正常系: Webhook 未設定ならログのみ", func(t *testing.T) {
		svc := NewFeedbackService(env.db, repository.NewGormUserRepository(), "", http.DefaultClient)
		resp, err := svc.Submit(ctx, alice.UserID, req)
		require.NoError(t, err)
		assert.False(t, resp.Delivered)
	})

	t.Run("異常系: 空白だけのメッセージ", func(t *testing.T) {
		svc := NewFeedbackService(env.db, repository.NewGormUserRepository(), "", http.DefaultClient)
		_, err := svc.Submit(ctx, alice.UserID, &model.FeedbackRequest{Category: model.FeedbackIdea, Message: "   "})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestTruncateRunes(t *testing.T) {
	long := strings.Repeat("あ", maxWebhookContent+10)
	got := truncateRunes(long, maxWebhookContent)
	assert.Equal(t, maxWebhookContent, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, "short", truncateRunes("short", maxWebhookContent))
}
