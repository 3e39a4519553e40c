package video

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/mssola/useragent"
	"github.com/openreel/openreel/internal/httputil"
)

type detailVideo struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	PlaybackURL string `json:"playbackUrl"`
}

type detailResponse struct {
	Video *detailVideo `json:"video"`
}

// Detail fetches a single video. A missing id is a valid empty outcome and
// comes back as {"video": null} with 200, distinct from a backend error.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	var v detailVideo
	var storagePath string
	var createdAt time.Time
	err := h.db.QueryRow(r.Context(),
		`SELECT id, user_id, title, description, storage_path, created_at
		 FROM videos WHERE id = $1`,
		videoID,
	).Scan(&v.ID, &v.UserID, &v.Title, &v.Description, &storagePath, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		httputil.WriteJSON(w, http.StatusOK, detailResponse{Video: nil})
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load video")
		return
	}
	v.CreatedAt = createdAt.UTC().Format(time.RFC3339)

	playbackURL, err := h.storage.GeneratePlaybackURL(r.Context(), storagePath, playbackURLExpiry)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to generate playback URL")
		return
	}
	v.PlaybackURL = playbackURL

	httputil.WriteJSON(w, http.StatusOK, detailResponse{Video: &v})
}

// RecordView logs a watch event with coarse client info. Failures are not
// surfaced to the viewer; a lost view record must never break playback.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	ua := useragent.New(r.UserAgent())
	browser, _ := ua.Browser()
	os := ua.OS()

	var country, city string
	if h.geo != nil {
		country, city = h.geo.Lookup(clientIP(r))
	}

	tag, err := h.db.Exec(r.Context(),
		`INSERT INTO video_views (video_id, browser, os, country, city)
		 SELECT id, $2, $3, $4, $5 FROM videos WHERE id = $1`,
		videoID, browser, os, country, city,
	)
	if err != nil {
		slog.Error("failed to record view", "video_id", videoID, "error", err)
	} else if tag.RowsAffected() == 0 {
		slog.Debug("view for unknown video ignored", "video_id", videoID)
	}

	w.WriteHeader(http.StatusNoContent)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
