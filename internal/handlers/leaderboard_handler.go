package handlers

import (
	"net/http"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/service"
	"go_flashcard_study/internal/webutil"
)

type LeaderboardHandler struct {
	service      service.LeaderboardService
	defaultLimit int
}

func NewLeaderboardHandler(s service.LeaderboardService, defaultLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{service: s, defaultLimit: defaultLimit}
}

func (h *LeaderboardHandler) Global(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	limit, err := webutil.IntQuery(r, "limit", h.defaultLimit, 1, 500)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	entries, err := h.service.Global(r.Context(), userID, limit)
	respondEntries(w, r, entries, err)
}

func (h *LeaderboardHandler) Friends(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	entries, err := h.service.Friends(r.Context(), userID)
	respondEntries(w, r, entries, err)
}

func (h *LeaderboardHandler) Streaks(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	limit, err := webutil.IntQuery(r, "limit", h.defaultLimit, 1, 500)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	entries, err := h.service.Streaks(r.Context(), userID, limit)
	respondEntries(w, r, entries, err)
}

func respondEntries(w http.ResponseWriter, r *http.Request, entries []model.LeaderboardEntry, err error) {
	logger := middleware.GetLogger(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, entries, logger)
}
