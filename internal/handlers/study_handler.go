package handlers

import (
	"net/http"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/service"
	"go_flashcard_study/internal/webutil"

	"github.com/google/uuid"
)

type StudyHandler struct {
	service service.StudyService
}

func NewStudyHandler(s service.StudyService) *StudyHandler {
	return &StudyHandler{service: s}
}

// StartSession はプレイリストの学習セッションを開始します
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.StartStudyRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	session, err := h.service.Start(r.Context(), userID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusCreated, session, logger)
}

func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}

	session, err := h.service.Get(r.Context(), userID, sessionID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, session, logger)
}

// SubmitAnswer は出題中のカードへの自己採点結果を受け取ります
func (h *StudyHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.service.Answer(r.Context(), userID, sessionID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

func (h *StudyHandler) ReviewMistakes(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}

	session, err := h.service.ReviewMistakes(r.Context(), userID, sessionID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, session, logger)
}

func (h *StudyHandler) FinishSession(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Finish(r.Context(), userID, sessionID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// sessionParams は認証ユーザーと {session_id} を取り出します。失敗時はレスポンスを書いて false を返します。
func (h *StudyHandler) sessionParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, err := webutil.UUIDParam(r, "session_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, sessionID, true
}
