package webutil_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.NewAppError("X", "x", "", model.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("wrap: %w", model.ErrInvalidInput), http.StatusBadRequest},
		{model.ErrConflict, http.StatusConflict},
		{model.ErrUnauthorized, http.StatusUnauthorized},
		{model.ErrForbidden, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, webutil.MapErrorToStatusCode(tt.err), tt.err.Error())
	}
}

func TestHandleError(t *testing.T) {
	t.Run("AppError はコードとメッセージをそのまま返す", func(t *testing.T) {
		rec := httptest.NewRecorder()
		webutil.HandleError(rec, nil, model.NewAppError("PLAYLIST_NOT_FOUND", "プレイリストが見つかりません。", "", model.ErrNotFound))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var body model.APIErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "PLAYLIST_NOT_FOUND", body.Error.Code)
	})

	t.Run("予期せぬエラーは詳細を隠す", func(t *testing.T) {
		rec := httptest.NewRecorder()
		webutil.HandleError(rec, nil, errors.New("pq: password authentication failed"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")
		assert.Contains(t, rec.Body.String(), "INTERNAL_SERVER_ERROR")
	})
}

func TestValidateStruct_Japanese(t *testing.T) {
	type request struct {
		PlaylistName string `json:"playlist_name" validate:"required,max=100"`
		Mode         string `json:"mode" validate:"required,oneof=normal infinite mastery"`
	}

	err := webutil.ValidateStruct(request{Mode: "normal"})
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Equal(t, "playlist_name", appErr.Detail.Field)
	assert.Equal(t, "プレイリスト名は必須項目です。", appErr.Detail.Message)

	err = webutil.ValidateStruct(request{PlaylistName: "基本", Mode: "speed"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "mode", appErr.Detail.Field)
	assert.Contains(t, appErr.Detail.Message, "学習モード")

	assert.NoError(t, webutil.ValidateStruct(request{PlaylistName: "基本", Mode: "mastery"}))
}

func TestDecodeJSONBody(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	require.NoError(t, webutil.DecodeJSONBody(req, &dst))
	assert.Equal(t, "a", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	assert.ErrorIs(t, webutil.DecodeJSONBody(req, &dst), model.ErrInvalidInput)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, webutil.DecodeJSONBody(req, &dst), model.ErrInvalidInput)
}

func TestParams(t *testing.T) {
	id := uuid.New()
	r := chi.NewRouter()
	r.Get("/items/{item_id}", func(w http.ResponseWriter, req *http.Request) {
		got, err := webutil.UUIDParam(req, "item_id")
		if err != nil {
			webutil.HandleError(w, nil, err)
			return
		}
		limit, err := webutil.IntQuery(req, "limit", 20, 1, 50)
		if err != nil {
			webutil.HandleError(w, nil, err)
			return
		}
		webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"id": got, "limit": limit}, nil)
	})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"正常系: 既定値", "/items/" + id.String(), http.StatusOK},
		{"正常系: limit 指定", "/items/" + id.String() + "?limit=50", http.StatusOK},
		{"異常系: UUID でない", "/items/abc", http.StatusBadRequest},
		{"異常系: limit が範囲外", "/items/" + id.String() + "?limit=51", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
