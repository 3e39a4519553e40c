package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/openreel/openreel/internal/httputil"
)

const identityKey contextKey = "identity"

// ErrBanned reports that resolution found a banned profile. By the time it
// is returned every refresh token for the account has been revoked.
var ErrBanned = errors.New("account is banned")

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Profile struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Banned    bool      `json:"banned"`
	CreatedAt time.Time `json:"createdAt"`
}

// Identity is the resolved per-request view of the caller. IsAdmin is
// derived on every resolution and never persisted.
type Identity struct {
	User    *User    `json:"user"`
	Profile *Profile `json:"profile"`
	IsAdmin bool     `json:"isAdmin"`
}

// Resolve fetches the user row and its profile row and derives the
// authorization state. A missing user or profile yields nil fields, not an
// error; a failed profile fetch is a real error so callers can tell "no
// profile" apart from "fetch failed". A banned profile triggers the forced
// sign-out side effect and returns ErrBanned.
func (h *Handler) Resolve(ctx context.Context, userID string) (*Identity, error) {
	if userID == "" {
		return &Identity{}, nil
	}

	user := &User{}
	err := h.db.QueryRow(ctx,
		"SELECT id, email FROM users WHERE id = $1", userID,
	).Scan(&user.ID, &user.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Identity{}, nil
	}
	if err != nil {
		return nil, err
	}

	profile := &Profile{}
	err = h.db.QueryRow(ctx,
		"SELECT id, role, banned, created_at FROM profiles WHERE id = $1", userID,
	).Scan(&profile.ID, &profile.Role, &profile.Banned, &profile.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Identity{User: user}, nil
	}
	if err != nil {
		return nil, err
	}

	if profile.Banned {
		if err := h.revokeAllRefreshTokens(ctx, userID); err != nil {
			return nil, err
		}
		return nil, ErrBanned
	}

	return &Identity{
		User:    user,
		Profile: profile,
		IsAdmin: IsAdmin(profile),
	}, nil
}

// IsAdmin holds iff the role is admin and the profile is not banned.
func IsAdmin(p *Profile) bool {
	return p != nil && p.Role == "admin" && !p.Banned
}

// RequireIdentity resolves the authenticated caller's identity and stores it
// in the context. This middleware, together with RequireAdmin, is the
// authoritative authorization boundary; any gating in the served pages is
// purely cosmetic and must never be relied on.
func (h *Handler) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := UserIDFromContext(r.Context())
		identity, err := h.Resolve(r.Context(), userID)
		if errors.Is(err, ErrBanned) {
			httputil.WriteError(w, http.StatusForbidden, "account is banned")
			return
		}
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to resolve identity")
			return
		}
		if identity.User == nil {
			httputil.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates admin-only routes. Must run after RequireIdentity.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity == nil || !identity.IsAdmin {
			httputil.WriteError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func IdentityFromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityKey).(*Identity)
	return identity
}

// Me reports the caller's resolved identity. Anonymous callers get null
// user and profile rather than an error; the served pages use this to decide
// their advisory redirects once loading completes.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := h.optionalUserID(r)

	identity, err := h.Resolve(r.Context(), userID)
	if errors.Is(err, ErrBanned) {
		// Forced sign-out already happened inside Resolve; the response
		// carries no usable identity.
		httputil.WriteJSON(w, http.StatusOK, &Identity{})
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to resolve identity")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, identity)
}

// optionalUserID extracts the user id from a bearer token when one is
// present and valid, and returns "" otherwise. Absence of a session is not
// an error here.
func (h *Handler) optionalUserID(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		return ""
	}
	claims, err := ValidateToken(h.jwtSecret, tokenStr)
	if err != nil || claims.TokenType != TokenTypeAccess {
		return ""
	}
	return claims.UserID
}
