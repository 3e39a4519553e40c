package video

import (
	"context"
	"log/slog"
	"time"

	"github.com/openreel/openreel/internal/database"
	"github.com/openreel/openreel/internal/storage"
)

// SweepStorage is the storage surface the reconciliation sweeper needs.
type SweepStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	DeleteObject(ctx context.Context, key string) error
	AbortMultipartUpload(ctx context.Context, key string, uploadID string) error
}

// Objects younger than this are left alone even without a metadata row: the
// upload may have finished while its row insert is still in flight.
const orphanGracePeriod = 1 * time.Hour

// ReapStaleSessions aborts resumable upload sessions that stopped making
// progress and drops their session rows. Aborting the multipart upload frees
// the storage backend's staged parts.
func ReapStaleSessions(ctx context.Context, db database.DBTX, store SweepStorage) {
	rows, err := db.Query(ctx,
		`SELECT id, storage_path, multipart_id FROM upload_sessions
		 WHERE updated_at < now() - interval '24 hours'
		 LIMIT 50`)
	if err != nil {
		slog.Error("sweep: failed to query stale sessions", "error", err)
		return
	}
	defer rows.Close()

	type staleSession struct {
		id, path, multipartID string
	}
	var stale []staleSession
	for rows.Next() {
		var s staleSession
		if err := rows.Scan(&s.id, &s.path, &s.multipartID); err != nil {
			slog.Error("sweep: failed to scan session", "error", err)
			continue
		}
		stale = append(stale, s)
	}
	if err := rows.Err(); err != nil {
		slog.Error("sweep: session iteration error", "error", err)
		return
	}

	for _, s := range stale {
		if err := store.AbortMultipartUpload(ctx, s.path, s.multipartID); err != nil {
			slog.Error("sweep: failed to abort multipart upload", "key", s.path, "error", err)
			continue
		}
		if _, err := db.Exec(ctx, `DELETE FROM upload_sessions WHERE id = $1`, s.id); err != nil {
			slog.Error("sweep: failed to delete session row", "session_id", s.id, "error", err)
		}
	}
}

// SweepOrphanObjects deletes stored objects that have neither a videos row
// nor a live upload session referencing them. An upload that wrote its bytes
// but failed its metadata insert leaves exactly this kind of orphan behind.
func SweepOrphanObjects(ctx context.Context, db database.DBTX, store SweepStorage) {
	objects, err := store.ListObjects(ctx, "")
	if err != nil {
		slog.Error("sweep: failed to list objects", "error", err)
		return
	}

	for _, obj := range objects {
		if time.Since(obj.LastModified) < orphanGracePeriod {
			continue
		}

		var referenced bool
		err := db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM videos WHERE storage_path = $1)
			     OR EXISTS (SELECT 1 FROM upload_sessions WHERE storage_path = $1)`,
			obj.Key,
		).Scan(&referenced)
		if err != nil {
			slog.Error("sweep: failed to check object reference", "key", obj.Key, "error", err)
			continue
		}
		if referenced {
			continue
		}

		if err := store.DeleteObject(ctx, obj.Key); err != nil {
			slog.Error("sweep: failed to delete orphan object", "key", obj.Key, "error", err)
			continue
		}
		slog.Info("sweep: removed orphan object", "key", obj.Key)
	}
}

// StartSweepLoop runs both reconciliation passes on a fixed interval until
// the context is cancelled.
func StartSweepLoop(ctx context.Context, db database.DBTX, store SweepStorage, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("sweep: shutting down")
				return
			case <-ticker.C:
				ReapStaleSessions(ctx, db, store)
				SweepOrphanObjects(ctx, db, store)
			}
		}
	}()
}
