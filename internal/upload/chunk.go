package upload

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openreel/openreel/internal/auth"
	"github.com/openreel/openreel/internal/httputil"
	"github.com/openreel/openreel/internal/storage"
)

type chunkResponse struct {
	Offset   int64   `json:"offset"`
	Progress float64 `json:"progress"`
}

// Chunk accepts the next slice of file bytes. The Upload-Offset header must
// match the session's stored offset exactly; anything else means the client
// and server disagree about what has been durably staged, and the client
// must re-sync before retrying.
func (h *Handler) Chunk(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	offsetHeader := r.Header.Get("Upload-Offset")
	offset, err := strconv.ParseInt(offsetHeader, 10, 64)
	if err != nil || offset < 0 {
		httputil.WriteError(w, http.StatusBadRequest, "missing or invalid Upload-Offset header")
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

	if offset != s.OffsetBytes {
		w.Header().Set("Upload-Offset", strconv.FormatInt(s.OffsetBytes, 10))
		httputil.WriteError(w, http.StatusConflict, "offset mismatch")
		return
	}

	remaining := s.TotalBytes - s.OffsetBytes
	expected := ChunkSize
	if remaining < expected {
		expected = remaining
	}
	if expected <= 0 {
		httputil.WriteError(w, http.StatusConflict, "upload already has all bytes")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, ChunkSize+1))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "failed to read chunk body")
		return
	}
	if int64(len(body)) != expected {
		httputil.WriteError(w, http.StatusBadRequest,
			"chunk must be exactly "+strconv.FormatInt(expected, 10)+" bytes")
		return
	}

	partNumber := int32(s.OffsetBytes/ChunkSize) + 1
	etag, err := h.storage.UploadChunk(r.Context(), s.StoragePath, s.MultipartID, partNumber, body)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to store chunk")
		return
	}

	newOffset := s.OffsetBytes + expected
	parts := append(s.Parts, storage.CompletedPart{PartNumber: partNumber, ETag: etag})
	partsJSON, err := json.Marshal(parts)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to encode part list")
		return
	}

	// Guarded on the old offset so two racing senders of the same chunk
	// cannot both advance the session.
	tag, err := h.db.Exec(r.Context(),
		`UPDATE upload_sessions
		 SET offset_bytes = $1, parts = $2, updated_at = now()
		 WHERE id = $3 AND offset_bytes = $4`,
		newOffset, partsJSON, s.ID, s.OffsetBytes)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to advance upload session")
		return
	}
	if tag.RowsAffected() == 0 {
		httputil.WriteError(w, http.StatusConflict, "upload session advanced concurrently")
		return
	}

	w.Header().Set("Upload-Offset", strconv.FormatInt(newOffset, 10))
	httputil.WriteJSON(w, http.StatusOK, chunkResponse{
		Offset:   newOffset,
		Progress: ProgressPercent(newOffset, s.TotalBytes),
	})
}
