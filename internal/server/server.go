package server

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openreel/openreel/internal/admin"
	"github.com/openreel/openreel/internal/auth"
	"github.com/openreel/openreel/internal/database"
	"github.com/openreel/openreel/internal/httputil"
	"github.com/openreel/openreel/internal/ratelimit"
	"github.com/openreel/openreel/internal/upload"
	"github.com/openreel/openreel/internal/validate"
	"github.com/openreel/openreel/internal/video"
	"github.com/openreel/openreel/internal/web"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Storage is the union of the storage surfaces the handlers need; the S3
// client satisfies it directly.
type Storage interface {
	video.ObjectStorage
	upload.ObjectStorage
}

type Config struct {
	DB               database.DBTX
	Pinger           Pinger
	Storage          Storage
	Geo              video.GeoResolver
	JWTSecret        string
	BaseURL          string
	MaxUploadBytes   int64
	S3PublicEndpoint string
}

type Server struct {
	router        chi.Router
	pinger        Pinger
	authHandler   *auth.Handler
	videoHandler  *video.Handler
	uploadHandler *upload.Handler
	adminHandler  *admin.Handler
	pages         *web.Pages
}

func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(slogMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(SecurityConfig{
		BaseURL:         cfg.BaseURL,
		StorageEndpoint: cfg.S3PublicEndpoint,
	}))

	s := &Server{router: r, pinger: cfg.Pinger, pages: web.NewPages()}

	if cfg.DB != nil {
		if cfg.JWTSecret == "" {
			log.Fatal("JWT_SECRET is required; set the environment variable")
		}

		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:8080"
		}

		secureCookies := strings.HasPrefix(baseURL, "https://")
		s.authHandler = auth.NewHandler(cfg.DB, cfg.JWTSecret, secureCookies)
		s.videoHandler = video.NewHandler(cfg.DB, cfg.Storage)
		if cfg.Geo != nil {
			s.videoHandler.SetGeoResolver(cfg.Geo)
		}
		s.uploadHandler = upload.NewHandler(cfg.DB, cfg.Storage, cfg.MaxUploadBytes)
		s.adminHandler = admin.NewHandler(cfg.DB, cfg.Storage)
	}

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/limits", handleLimits)

	if s.authHandler != nil {
		authLimiter := ratelimit.NewLimiter(0.5, 5)
		s.router.Route("/api/auth", func(r chi.Router) {
			// Identity resolution runs on every page load and stays outside
			// the limiter.
			r.Get("/me", s.authHandler.Me)

			r.Group(func(r chi.Router) {
				r.Use(authLimiter.Middleware)
				r.Post("/signup", s.authHandler.Signup)
				r.Post("/login", s.authHandler.Login)
				r.Post("/refresh", s.authHandler.Refresh)
				r.Post("/logout", s.authHandler.Logout)
			})
		})

		// Feed, detail and view recording are public.
		s.router.Get("/api/videos", s.videoHandler.Feed)
		s.router.Get("/api/videos/{id}", s.videoHandler.Detail)
		s.router.Post("/api/videos/{id}/view", s.videoHandler.RecordView)

		s.router.Route("/api/uploads", func(r chi.Router) {
			r.Use(s.authHandler.Middleware)
			r.Use(s.authHandler.RequireIdentity)
			r.Post("/", s.uploadHandler.Start)
			r.Patch("/{id}", s.uploadHandler.Chunk)
			r.Post("/{id}/complete", s.uploadHandler.Complete)
			r.Delete("/{id}", s.uploadHandler.Cancel)
		})

		s.router.Route("/api/admin", func(r chi.Router) {
			r.Use(s.authHandler.Middleware)
			r.Use(s.authHandler.RequireIdentity)
			r.Use(s.authHandler.RequireAdmin)
			r.Get("/profiles", s.adminHandler.ListProfiles)
			r.Get("/videos", s.adminHandler.ListVideos)
			r.Post("/profiles/{id}/ban", s.adminHandler.ToggleBan)
			r.Post("/profiles/{id}/role", s.adminHandler.ToggleRole)
			r.Delete("/videos/{id}", s.adminHandler.DeleteVideo)
		})
	}

	s.router.Get("/", s.pages.Home)
	s.router.Get("/login", s.pages.Login)
	s.router.Get("/signup", s.pages.Signup)
	s.router.Get("/upload", s.pages.Upload)
	s.router.Get("/watch/{id}", s.pages.Watch)
	s.router.Get("/admin", s.pages.Admin)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","error":"database unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func handleLimits(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, validate.FieldLimits())
}
