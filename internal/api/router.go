package api

import (
	h "github.com/frodejac/genoserve/internal/api/handlers"
	"github.com/frodejac/genoserve/internal/auth/static"
	"github.com/frodejac/genoserve/internal/config"
	"github.com/frodejac/genoserve/internal/database/stats"
	"github.com/frodejac/genoserve/internal/files"
	"golang.org/x/time/rate"
	"net/http"
)

type Config struct {
	AuthType           config.AuthType
	RateLimit          rate.Limit
	RateBurst          int
	BaseUrl            string
	StaticPath         string
	Version            string
	UseSecurityHeaders bool
}

type handlers struct {
	data   *h.DataHandler
	files  *h.FilesHandler
	health *h.HealthHandler
	stats  *h.StatsHandler
}

type Router struct {
	config     *Config
	staticAuth *static.Auth
	handlers   *handlers
}

func NewRouter(
	fileService *files.FileService,
	statsStore *stats.Store,
	staticAuth *static.Auth,
	config *Config,
) *Router {
	var recorder h.AccessRecorder
	if statsStore != nil {
		recorder = statsStore
	}
	router := &Router{
		config:     config,
		staticAuth: staticAuth,
		handlers: &handlers{
			data:   h.NewDataHandler(fileService, recorder),
			files:  h.NewFilesHandler(fileService, config.BaseUrl),
			health: h.NewHealthHandler(fileService, config.Version),
		},
	}
	if statsStore != nil {
		router.handlers.stats = h.NewStatsHandler(statsStore)
	}
	return router
}

func (r *Router) SetupRoutes(mux *http.ServeMux) {
	// GET patterns also match HEAD
	mux.HandleFunc("GET /api/health", r.handlers.health.HandleHealth)
	mux.HandleFunc("GET /api/files", r.handlers.files.HandleListFiles)
	mux.HandleFunc("GET /api/browse", r.handlers.files.HandleBrowse)
	mux.HandleFunc("GET /api/genomes", r.handlers.files.HandleListGenomes)
	mux.HandleFunc("GET /api/tracks", r.handlers.files.HandleGetTrack)
	if r.handlers.stats != nil {
		mux.HandleFunc("GET /api/stats", r.handlers.stats.HandleListStats)
	}
	mux.HandleFunc("GET /data/{path...}", r.handlers.data.HandleGetData)
	if r.config.StaticPath != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(r.config.StaticPath)))
	}
}

// Handler wraps mux in the middleware chain, outermost first: request id,
// logging, CORS, rate limiting, authentication, security headers.
func (r *Router) Handler(mux *http.ServeMux) http.Handler {
	var handler http.Handler = mux
	if r.config.UseSecurityHeaders {
		handler = SecurityHeadersMiddleware(handler)
	}
	if r.config.AuthType == config.AuthTypeStatic && r.staticAuth != nil {
		handler = r.staticAuth.RequireBasicAuth(handler)
	}
	if r.config.RateLimit > 0 {
		handler = NewRateLimiter(r.config.RateLimit, r.config.RateBurst).Middleware(handler)
	}
	handler = CorsMiddleware(r.config.AuthType == config.AuthTypeStatic)(handler)
	handler = LoggingMiddleWare(handler)
	return RequestIdMiddleware(handler)
}
