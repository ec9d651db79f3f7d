package handlers

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"

	"go_flashcard_study/internal/middleware"
	"go_flashcard_study/internal/model"
	"go_flashcard_study/internal/service"
	"go_flashcard_study/internal/webutil"
)

const (
	maxImportBytes = 10 << 20
	xlsxMediaType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// PlaylistHandler はプレイリスト単位の操作 (改名・削除・共有・入出力) を扱います
type PlaylistHandler struct {
	service service.FlashcardService
}

func NewPlaylistHandler(s service.FlashcardService) *PlaylistHandler {
	return &PlaylistHandler{service: s}
}

func (h *PlaylistHandler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	playlists, err := h.service.ListPlaylists(r.Context(), userID, userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if playlists == nil {
		playlists = []model.PlaylistSummary{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, playlists, logger)
}

func (h *PlaylistHandler) RenamePlaylist(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	name, err := playlistParam(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.RenamePlaylistRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.RenamePlaylist(r.Context(), userID, name, req.NewName); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Playlist renamed", "from", name, "to", req.NewName)
	respondMessage(w, http.StatusOK, "プレイリスト名を変更しました。", logger)
}

func (h *PlaylistHandler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	name, err := playlistParam(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.DeletePlaylist(r.Context(), userID, name); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Playlist deleted", "playlist", name)
	w.WriteHeader(http.StatusNoContent)
}

// SharePlaylist はプレイリストを友達にコピーして共有します
func (h *PlaylistHandler) SharePlaylist(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	name, err := playlistParam(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.SharePlaylistRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	result, err := h.service.SharePlaylist(r.Context(), userID, name, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Playlist shared", "playlist", name, "recipients", len(result.Recipients))
	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}

// ImportPlaylist は multipart の file (xlsx / csv) からカードを一括作成します
func (h *PlaylistHandler) ImportPlaylist(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	name, err := playlistParam(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		logger.Warn("Failed to parse multipart form", "error", err)
		webutil.HandleError(w, logger, model.NewAppError("INVALID_UPLOAD", "アップロードされたファイルを読み取れませんでした。", "file", model.ErrInvalidInput))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_UPLOAD", "file フィールドにファイルを指定してください。", "file", model.ErrInvalidInput))
		return
	}
	defer file.Close()

	isPublic, _ := strconv.ParseBool(r.FormValue("is_public"))

	result, err := h.service.ImportPlaylist(r.Context(), userID, name, isPublic, file, header.Filename)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Playlist imported", "playlist", name, "created", result.Created, "skipped", result.Skipped)
	webutil.RespondWithJSON(w, http.StatusCreated, result, logger)
}

// ExportPlaylist はプレイリストを xlsx で返します
func (h *PlaylistHandler) ExportPlaylist(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	name, err := playlistParam(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	// 途中で失敗したときに JSON のエラーを返せるよう、いったんバッファに書き出す
	var buf bytes.Buffer
	if err := h.service.ExportPlaylist(r.Context(), userID, name, &buf); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", xlsxMediaType)
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name+".xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error("Failed to write export body", "error", err)
	}
}
