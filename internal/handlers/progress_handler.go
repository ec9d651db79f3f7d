package handlers

import (
	"net/http"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/service"
	"go_flashcard_study/internal/webutil"
)

// ProgressHandler はデイリークエストと連続学習日数を返します
type ProgressHandler struct {
	quests  service.QuestService
	streaks service.StreakService
}

func NewProgressHandler(quests service.QuestService, streaks service.StreakService) *ProgressHandler {
	return &ProgressHandler{quests: quests, streaks: streaks}
}

func (h *ProgressHandler) GetDailyQuests(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	quests, err := h.quests.GetDailyQuests(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if quests == nil {
		quests = []model.DailyQuestResponse{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, quests, logger)
}

func (h *ProgressHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	streak, err := h.streaks.GetStreak(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, streak, logger)
}
