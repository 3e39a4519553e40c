// Package admin serves the moderation console API. Every route here sits
// behind the admin middleware; nothing in this package re-checks the role.
package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/openreel/openreel/internal/database"
	"github.com/openreel/openreel/internal/httputil"
)

// listLimit caps both console listings at the newest rows.
const listLimit = 200

// ObjectStorage is the storage surface video deletion needs.
type ObjectStorage interface {
	DeleteObject(ctx context.Context, key string) error
}

type Handler struct {
	db      database.DBTX
	storage ObjectStorage
}

func NewHandler(db database.DBTX, s ObjectStorage) *Handler {
	return &Handler{db: db, storage: s}
}

type profileItem struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Banned    bool      `json:"banned"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListProfiles returns the newest profiles joined with their account email.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(r.Context(),
		`SELECT p.id, u.email, p.role, p.banned, p.created_at
		 FROM profiles p
		 JOIN users u ON u.id = p.id
		 ORDER BY p.created_at DESC
		 LIMIT $1`, listLimit)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load profiles")
		return
	}
	defer rows.Close()

	profiles := make([]profileItem, 0, listLimit)
	for rows.Next() {
		var p profileItem
		if err := rows.Scan(&p.ID, &p.Email, &p.Role, &p.Banned, &p.CreatedAt); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to load profiles")
			return
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load profiles")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

type videoItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListVideos returns the newest videos for the console.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(r.Context(),
		`SELECT id, user_id, title, created_at
		 FROM videos
		 ORDER BY created_at DESC
		 LIMIT $1`, listLimit)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load videos")
		return
	}
	defer rows.Close()

	videos := make([]videoItem, 0, listLimit)
	for rows.Next() {
		var v videoItem
		if err := rows.Scan(&v.ID, &v.UserID, &v.Title, &v.CreatedAt); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to load videos")
			return
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load videos")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// ToggleBan flips the banned flag. The database row is the only source of
// truth; flipping whatever is stored now keeps concurrent admins consistent.
func (h *Handler) ToggleBan(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	var banned bool
	err := h.db.QueryRow(r.Context(),
		`UPDATE profiles SET banned = NOT banned WHERE id = $1 RETURNING banned`,
		profileID,
	).Scan(&banned)
	if errors.Is(err, pgx.ErrNoRows) {
		httputil.WriteError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update ban state")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"banned": banned})
}

// ToggleRole flips a profile between user and admin.
func (h *Handler) ToggleRole(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	var role string
	err := h.db.QueryRow(r.Context(),
		`UPDATE profiles
		 SET role = CASE WHEN role = 'admin' THEN 'user' ELSE 'admin' END
		 WHERE id = $1
		 RETURNING role`,
		profileID,
	).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		httputil.WriteError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"role": role})
}

// DeleteVideo removes a video, storage first. The row is only dropped once
// the object is gone; a storage failure leaves the row so the video never
// becomes an unplayable ghost in the feed.
func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	var storagePath string
	err := h.db.QueryRow(r.Context(),
		`SELECT storage_path FROM videos WHERE id = $1`, videoID,
	).Scan(&storagePath)
	if errors.Is(err, pgx.ErrNoRows) {
		httputil.WriteError(w, http.StatusNotFound, "video not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load video")
		return
	}

	if err := h.storage.DeleteObject(r.Context(), storagePath); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete video from storage")
		return
	}

	if _, err := h.db.Exec(r.Context(), `DELETE FROM videos WHERE id = $1`, videoID); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete video record")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
