package video

import (
	"context"
	"time"

	"github.com/openreel/openreel/internal/database"
)

// ObjectStorage is the slice of the storage client the read paths need.
type ObjectStorage interface {
	GeneratePlaybackURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// GeoResolver maps a viewer address to a coarse location. Lookups are
// best-effort and may return empty strings.
type GeoResolver interface {
	Lookup(ip string) (country, city string)
}

type Handler struct {
	db      database.DBTX
	storage ObjectStorage
	geo     GeoResolver
}

func NewHandler(db database.DBTX, s ObjectStorage) *Handler {
	return &Handler{db: db, storage: s}
}

func (h *Handler) SetGeoResolver(geo GeoResolver) {
	h.geo = geo
}
