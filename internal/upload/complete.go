package upload

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/openreel/openreel/internal/auth"
	"github.com/openreel/openreel/internal/httputil"
	"github.com/openreel/openreel/internal/validate"
)

type completeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type completedVideo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Complete publishes an upload. The object is finalized in storage before
// the videos row is written; a row must never reference bytes that storage
// has not confirmed. If the row insert fails afterwards the object stays
// behind as an orphan for the sweeper to reclaim.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	var req completeRequest
	if err := readJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Title is required.")
		return
	}
	if msg := validate.Title(title); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}
	description := strings.TrimSpace(req.Description)
	if msg := validate.Description(description); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	s, err := h.loadSession(r.Context(), sessionID, userID)
	if errors.Is(err, errSessionNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "upload session not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load upload session")
		return
	}

	if s.OffsetBytes != s.TotalBytes {
		httputil.WriteError(w, http.StatusBadRequest, "upload is not finished")
		return
	}

	if err := h.storage.CompleteMultipartUpload(r.Context(), s.StoragePath, s.MultipartID, s.Parts); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to finalize upload")
		return
	}

	var videoID string
	err = h.db.QueryRow(r.Context(),
		`INSERT INTO videos (user_id, title, description, storage_path)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		userID, title, description, s.StoragePath,
	).Scan(&videoID)
	if err != nil {
		slog.Error("upload finalized in storage but video insert failed",
			"key", s.StoragePath, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save video")
		return
	}

	if _, err := h.db.Exec(r.Context(), `DELETE FROM upload_sessions WHERE id = $1`, s.ID); err != nil {
		slog.Error("failed to delete finished upload session", "session_id", s.ID, "error", err)
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]completedVideo{
		"video": {ID: videoID, Title: title, Description: description},
	})
}

// Cancel abandons an in-flight session, freeing its staged parts.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	s, err := h.loadSession(r.Context(), sessionID, userID)
	if errors.Is(err, errSessionNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "upload session not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load upload session")
		return
	}

	if err := h.storage.AbortMultipartUpload(r.Context(), s.StoragePath, s.MultipartID); err != nil {
		slog.Error("failed to abort multipart upload", "key", s.StoragePath, "error", err)
	}
	if _, err := h.db.Exec(r.Context(), `DELETE FROM upload_sessions WHERE id = $1`, s.ID); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete upload session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
