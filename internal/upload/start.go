package upload

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openreel/openreel/internal/auth"
	"github.com/openreel/openreel/internal/httputil"
	"github.com/openreel/openreel/internal/storage"
	"github.com/openreel/openreel/internal/validate"
)

// objectKeyPattern is the shape every generated object key must have:
// owner id, slash, random id, hyphen, sanitized filename.
var objectKeyPattern = regexp.MustCompile(`^[0-9a-f-]{36}/[A-Za-z0-9._-]{1,160}$`)

type startRequest struct {
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
	Fingerprint string `json:"fingerprint"`
}

type startResponse struct {
	UploadID  string `json:"uploadId"`
	Offset    int64  `json:"offset"`
	ChunkSize int64  `json:"chunkSize"`
}

// Start opens a new upload session or resumes an existing one. The
// fingerprint identifies the file across page reloads; matching an
// incomplete session returns it with its current offset instead of staging
// the same bytes twice.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req startRequest
	if err := readJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FileName == "" || req.FileSize <= 0 {
		httputil.WriteError(w, http.StatusBadRequest, "Choose a video file.")
		return
	}
	if req.Fingerprint == "" {
		httputil.WriteError(w, http.StatusBadRequest, "missing file fingerprint")
		return
	}
	if req.FileSize > h.maxUploadBytes {
		httputil.WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("file exceeds the %d MB upload limit", h.maxUploadBytes/(1024*1024)))
		return
	}
	if msg := validate.Filename(req.FileName); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	// Resume path. The unique (user_id, fingerprint) index guarantees at
	// most one live session per file, so the lookup must cover the whole
	// index scope or a fresh insert below would collide with a stale row.
	var (
		existing        startResponse
		storedBytes     int64
		storedPath      string
		storedMultipart string
	)
	err := h.db.QueryRow(r.Context(),
		`SELECT id, offset_bytes, total_bytes, storage_path, multipart_id FROM upload_sessions
		 WHERE user_id = $1 AND fingerprint = $2`,
		userID, req.Fingerprint,
	).Scan(&existing.UploadID, &existing.Offset, &storedBytes, &storedPath, &storedMultipart)
	switch {
	case err == nil && storedBytes == req.FileSize:
		existing.ChunkSize = ChunkSize
		httputil.WriteJSON(w, http.StatusOK, existing)
		return
	case err == nil:
		// Same fingerprint, different size: the file changed since the
		// session was staged. Its bytes are useless now, so replace it.
		_ = h.storage.AbortMultipartUpload(r.Context(), storedPath, storedMultipart)
		if _, err := h.db.Exec(r.Context(),
			"DELETE FROM upload_sessions WHERE id = $1", existing.UploadID); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to replace upload session")
			return
		}
	case !errors.Is(err, pgx.ErrNoRows):
		httputil.WriteError(w, http.StatusInternalServerError, "failed to look up upload session")
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/%s-%s", userID, uuid.NewString(), storage.SanitizeFilename(req.FileName))
	if !objectKeyPattern.MatchString(key) {
		httputil.WriteError(w, http.StatusBadRequest, "Upload path error.")
		return
	}

	multipartID, err := h.storage.StartMultipartUpload(r.Context(), key, contentType)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to start upload")
		return
	}

	var sessionID string
	err = h.db.QueryRow(r.Context(),
		`INSERT INTO upload_sessions (user_id, fingerprint, storage_path, content_type, total_bytes, multipart_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		userID, req.Fingerprint, key, contentType, req.FileSize, multipartID,
	).Scan(&sessionID)
	if err != nil {
		// The staged multipart upload has no row pointing at it now; free it
		// rather than leaving it for the sweeper.
		_ = h.storage.AbortMultipartUpload(r.Context(), key, multipartID)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create upload session")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, startResponse{
		UploadID:  sessionID,
		Offset:    0,
		ChunkSize: ChunkSize,
	})
}
