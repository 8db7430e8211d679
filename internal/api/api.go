// Package api exposes the save store, the narrative generator and the
// combat resolver over REST.
package api

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/save"
	"github.com/cory-johannsen/dungeon/internal/narrative"
	"github.com/cory-johannsen/dungeon/internal/observability"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes = 1 << 20

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middleware so the first listed is the outermost.
func Chain(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// LimitBody rejects bodies larger than n bytes.
func LimitBody(n int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

// Handler serves the REST surface.
type Handler struct {
	saves    *save.Service
	narrator *narrative.Generator
	resolver *combat.Resolver
	logger   *zap.Logger
}

// NewHandler creates a Handler.
//
// Precondition: all arguments must be non-nil.
func NewHandler(saves *save.Service, narrator *narrative.Generator, resolver *combat.Resolver, logger *zap.Logger) *Handler {
	return &Handler{saves: saves, narrator: narrator, resolver: resolver, logger: logger}
}

// Routes returns the routed handler wrapped in tracing, panic recovery,
// access logging and the body limit.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/save", h.upsertSave)
	mux.HandleFunc("GET /api/save/{saveId}", h.loadSave)
	mux.HandleFunc("DELETE /api/save/{saveId}", h.deleteSave)
	mux.HandleFunc("GET /api/save/player/{playerId}", h.listSaves)
	mux.HandleFunc("GET /api/profile/{playerId}", h.getProfile)
	mux.HandleFunc("PATCH /api/profile/{playerId}", h.updateProfile)
	mux.HandleFunc("POST /api/story/generate", h.generateStory)
	mux.HandleFunc("POST /api/story/combat", h.resolveCombat)
	mux.HandleFunc("GET /healthz", h.healthz)

	return Chain(mux,
		func(next http.Handler) http.Handler { return otelhttp.NewHandler(next, "dungeon-api") },
		func(next http.Handler) http.Handler { return observability.AccessLog(h.logger, next) },
		func(next http.Handler) http.Handler { return observability.Recover(h.logger, next) },
		LimitBody(MaxBodyBytes),
	)
}
