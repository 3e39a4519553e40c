package video

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/openreel/openreel/internal/httputil"
)

// feedLimit caps the explore feed at the most recent uploads.
const feedLimit = 60

const playbackURLExpiry = 1 * time.Hour

type feedItem struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	PlaybackURL string `json:"playbackUrl"`
}

// Feed lists the newest videos. An empty table yields an empty list, which
// the page renders as its explicit empty state.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(r.Context(),
		`SELECT id, user_id, title, description, storage_path, created_at
		 FROM videos
		 ORDER BY created_at DESC
		 LIMIT $1`, feedLimit)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load videos")
		return
	}
	defer rows.Close()

	items := make([]feedItem, 0, feedLimit)
	for rows.Next() {
		var item feedItem
		var storagePath string
		var createdAt time.Time
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.Description, &storagePath, &createdAt); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to load videos")
			return
		}
		item.CreatedAt = createdAt.UTC().Format(time.RFC3339)

		playbackURL, err := h.storage.GeneratePlaybackURL(r.Context(), storagePath, playbackURLExpiry)
		if err != nil {
			// An unplayable card helps nobody; log and leave the item out.
			slog.Error("feed: failed to generate playback URL", "video_id", item.ID, "error", err)
			continue
		}
		item.PlaybackURL = playbackURL
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load videos")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"videos": items})
}
