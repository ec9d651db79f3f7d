package handlers

import (
	"net/http"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/service"
	"go_flashcard_study/internal/webutil"
)

type UserHandler struct {
	users      service.UserService
	flashcards service.FlashcardService
}

func NewUserHandler(users service.UserService, flashcards service.FlashcardService) *UserHandler {
	return &UserHandler{users: users, flashcards: flashcards}
}

// GetMe は認証済みユーザー自身の情報を返します
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	me, err := h.users.GetMe(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, me, logger)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.UpdateProfileRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	me, err := h.users.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Profile updated")
	webutil.RespondWithJSON(w, http.StatusOK, me, logger)
}

// SearchUsers は ?q= の前方一致でユーザーを検索します
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	limit, err := webutil.IntQuery(r, "limit", 20, 1, 50)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	users, err := h.users.SearchUsers(r.Context(), userID, r.URL.Query().Get("q"), limit)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if users == nil {
		users = []model.UserSummary{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, users, logger)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	viewerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	targetID, err := webutil.UUIDParam(r, "user_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	profile, err := h.users.GetProfile(r.Context(), viewerID, targetID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, profile, logger)
}

// GetUserPlaylists は他ユーザーのプレイリスト一覧 (閲覧可能なものだけ) を返します
func (h *UserHandler) GetUserPlaylists(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	viewerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	ownerID, err := webutil.UUIDParam(r, "user_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	playlists, err := h.flashcards.ListPlaylists(r.Context(), viewerID, ownerID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if playlists == nil {
		playlists = []model.PlaylistSummary{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, playlists, logger)
}
