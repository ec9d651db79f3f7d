package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/webutil"

	"github.com/go-chi/chi/v5"
)

// decodeAndValidate はリクエストボディをデコードし、DTO のバリデーションまで行います
func decodeAndValidate(r *http.Request, logger *slog.Logger, dst interface{}) error {
	if err := webutil.DecodeJSONBody(r, dst); err != nil {
		logger.Warn("Failed to decode request body", "error", err)
		return err
	}
	if err := webutil.ValidateStruct(dst); err != nil {
		logger.Warn("Validation failed", "error", err)
		return err
	}
	return nil
}

// playlistParam は URL の {name} をデコードしたプレイリスト名を返します
func playlistParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "name")
	name, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(name) == "" {
		return "", model.NewAppError("INVALID_URL_PARAM", "プレイリスト名の形式が正しくありません。", "name", model.ErrInvalidInput)
	}
	return name, nil
}

func respondMessage(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	webutil.RespondWithJSON(w, code, map[string]string{"message": message}, logger)
}
