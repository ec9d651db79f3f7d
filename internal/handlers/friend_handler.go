package handlers

import (
	"context"
	"net/http"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/service"
	"go_flashcard_study/internal/webutil"

	"github.com/google/uuid"
)

type FriendHandler struct {
	service service.FriendService
}

func NewFriendHandler(s service.FriendService) *FriendHandler {
	return &FriendHandler{service: s}
}

func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	friends, err := h.service.ListFriends(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if friends == nil {
		friends = []model.FriendResponse{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, friends, logger)
}

func (h *FriendHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.service.ListIncoming)
}

func (h *FriendHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.service.ListOutgoing)
}

func (h *FriendHandler) listRequests(w http.ResponseWriter, r *http.Request, list func(context.Context, uuid.UUID) ([]model.FriendRequestResponse, error)) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	requests, err := list(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if requests == nil {
		requests = []model.FriendRequestResponse{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, requests, logger)
}

// SendRequest は友達申請を送ります。相手から申請済みならその場で成立します。
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.FriendRequestRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.service.SendRequest(r.Context(), userID, req.AddresseeID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	status := http.StatusCreated
	if resp.Status == model.FriendStatusAccepted {
		status = http.StatusOK
	}
	logger.Info("Friend request sent", "addressee_id", req.AddresseeID, "status", resp.Status)
	webutil.RespondWithJSON(w, status, resp, logger)
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	connectionID, err := webutil.UUIDParam(r, "connection_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.service.AcceptRequest(r.Context(), userID, connectionID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.deleteRequest(w, r, h.service.RejectRequest)
}

func (h *FriendHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	h.deleteRequest(w, r, h.service.CancelRequest)
}

func (h *FriendHandler) deleteRequest(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, uuid.UUID) error) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	connectionID, err := webutil.UUIDParam(r, "connection_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := op(r.Context(), userID, connectionID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	friendID, err := webutil.UUIDParam(r, "user_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.RemoveFriend(r.Context(), userID, friendID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Friend removed", "friend_id", friendID)
	w.WriteHeader(http.StatusNoContent)
}
