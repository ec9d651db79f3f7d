package handlers

import (
	"net/http"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/service"
	"go_flashcard_study/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type FlashcardHandler struct {
	service service.FlashcardService
}

func NewFlashcardHandler(s service.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{service: s}
}

// CreateFlashcard はカードを1枚作成します
func (h *FlashcardHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.CreateFlashcardRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	card, err := h.service.CreateFlashcard(r.Context(), userID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Flashcard created", "flashcard_id", card.FlashcardID)
	webutil.RespondWithJSON(w, http.StatusCreated, card, logger)
}

// ListFlashcards は自分のカード一覧を返します。?playlist= で絞り込み。
func (h *FlashcardHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	cards, err := h.service.ListFlashcards(r.Context(), userID, r.URL.Query().Get("playlist"))
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if cards == nil {
		cards = []*model.Flashcard{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, cards, logger)
}

func (h *FlashcardHandler) GetFlashcard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	flashcardID, err := webutil.UUIDParam(r, "flashcard_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	card, err := h.service.GetFlashcard(r.Context(), userID, flashcardID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, card, logger)
}

// GetPublicFlashcard は共有リンク (public_id) からカードを返します。認証不要。
func (h *FlashcardHandler) GetPublicFlashcard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	viewerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		viewerID = uuid.Nil
	}

	card, err := h.service.GetByPublicID(r.Context(), viewerID, chi.URLParam(r, "public_id"))
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, card, logger)
}

func (h *FlashcardHandler) UpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	flashcardID, err := webutil.UUIDParam(r, "flashcard_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.UpdateFlashcardRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if req.Front == nil && req.Back == nil && req.PlaylistName == nil && req.IsPublic == nil {
		webutil.HandleError(w, logger, model.NewAppError("NO_UPDATE_FIELDS", "更新する項目を1つ以上指定してください。", "", model.ErrInvalidInput))
		return
	}

	card, err := h.service.UpdateFlashcard(r.Context(), userID, flashcardID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Flashcard updated", "flashcard_id", flashcardID)
	webutil.RespondWithJSON(w, http.StatusOK, card, logger)
}

func (h *FlashcardHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	flashcardID, err := webutil.UUIDParam(r, "flashcard_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.DeleteFlashcard(r.Context(), userID, flashcardID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Flashcard deleted", "flashcard_id", flashcardID)
	w.WriteHeader(http.StatusNoContent)
}

// ListReceived は友達から共有されたカードを返します
func (h *FlashcardHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	cards, err := h.service.ListReceived(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if cards == nil {
		cards = []*model.Flashcard{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, cards, logger)
}
