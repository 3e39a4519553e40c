// Package upload implements the resumable chunked upload protocol. A client
// opens a session, sends fixed-size chunks with an offset header, and
// finishes with a metadata call that publishes the video. Sessions survive
// page reloads: reopening with the same file fingerprint resumes at the
// stored offset.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/openreel/openreel/internal/database"
	"github.com/openreel/openreel/internal/storage"
)

// ChunkSize is the fixed chunk length in bytes. Every chunk except the last
// must be exactly this long; the storage backend rejects multipart parts
// below 5 MiB, so the value also satisfies its minimum.
const ChunkSize int64 = 6 * 1024 * 1024

// ObjectStorage is the multipart surface of the storage client the
// orchestrator drives.
type ObjectStorage interface {
	StartMultipartUpload(ctx context.Context, key string, contentType string) (string, error)
	UploadChunk(ctx context.Context, key string, uploadID string, partNumber int32, data []byte) (string, error)
	CompleteMultipartUpload(ctx context.Context, key string, uploadID string, parts []storage.CompletedPart) error
	AbortMultipartUpload(ctx context.Context, key string, uploadID string) error
}

type Handler struct {
	db             database.DBTX
	storage        ObjectStorage
	maxUploadBytes int64
}

func NewHandler(db database.DBTX, s ObjectStorage, maxUploadBytes int64) *Handler {
	return &Handler{db: db, storage: s, maxUploadBytes: maxUploadBytes}
}

var errSessionNotFound = errors.New("upload session not found")

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// session mirrors one upload_sessions row.
type session struct {
	ID          string
	UserID      string
	StoragePath string
	ContentType string
	TotalBytes  int64
	OffsetBytes int64
	MultipartID string
	Parts       []storage.CompletedPart
}

// loadSession fetches a session scoped to its owner. A session id belonging
// to another user is indistinguishable from a missing one.
func (h *Handler) loadSession(ctx context.Context, id, userID string) (*session, error) {
	var s session
	var partsJSON []byte
	err := h.db.QueryRow(ctx,
		`SELECT id, user_id, storage_path, content_type, total_bytes, offset_bytes, multipart_id, parts
		 FROM upload_sessions WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&s.ID, &s.UserID, &s.StoragePath, &s.ContentType, &s.TotalBytes, &s.OffsetBytes, &s.MultipartID, &partsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(partsJSON, &s.Parts); err != nil {
		return nil, err
	}
	return &s, nil
}
