package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	defaultCORSOrigin = "http://localhost:3000"
	defaultCORSMaxAge = 86400
)

// corsPolicy is the subset of cors.Options the database controls.
type corsPolicy struct {
	origins     []string
	credentials bool
	maxAge      int
}

func (p corsPolicy) equal(o corsPolicy) bool {
	return p.credentials == o.credentials && p.maxAge == o.maxAge && slices.Equal(p.origins, o.origins)
}

func (p corsPolicy) handler(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   p.origins,
		AllowCredentials: p.credentials,
		MaxAge:           p.maxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	}).Handler(next)
}

type corsState struct {
	policy  corsPolicy
	handler http.Handler
}

// CORSReloader applies the CORS policy stored in cors_config and picks up
// changes made with the configure CLI without a restart. Until a policy is
// stored the frontend URL is the only allowed origin.
type CORSReloader struct {
	repo     database.CorsConfigRepositoryInterface
	fallback corsPolicy
	log      *zap.Logger
	interval time.Duration

	next  http.Handler
	state atomic.Pointer[corsState]
}

// NewCORSReloader creates the reloader. A non-positive interval disables polling.
func NewCORSReloader(repo database.CorsConfigRepositoryInterface, frontendURL string, log *zap.Logger, interval time.Duration) *CORSReloader {
	if log == nil {
		log = zap.NewNop()
	}
	origins := database.AllowedOriginsSlice(strings.TrimSpace(frontendURL))
	if len(origins) == 0 {
		origins = []string{defaultCORSOrigin}
	}
	return &CORSReloader{
		repo:     repo,
		fallback: corsPolicy{origins: origins, credentials: true, maxAge: defaultCORSMaxAge},
		log:      log,
		interval: interval,
	}
}

// Middleware installs the reloader in front of next and loads the first policy.
func (r *CORSReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		r.next = next
		r.Reload(context.Background())
		return r
	}
}

// Start polls for policy changes until ctx is cancelled
func (r *CORSReloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reload(ctx)
		}
	}
}

// Reload reads the stored policy and swaps the handler when it changed
func (r *CORSReloader) Reload(ctx context.Context) {
	if r.next == nil {
		return
	}
	policy := r.policy(ctx)
	if cur := r.state.Load(); cur != nil && cur.policy.equal(policy) {
		return
	}
	r.state.Store(&corsState{policy: policy, handler: policy.handler(r.next)})
	r.log.Info("cors_policy_loaded",
		zap.Strings("origins", policy.origins),
		zap.Bool("allow_credentials", policy.credentials),
	)
}

func (r *CORSReloader) policy(ctx context.Context) corsPolicy {
	stored, err := r.repo.Get(ctx)
	if err != nil {
		r.log.Debug("cors_config_fallback", zap.Error(err))
		return r.fallback
	}
	if stored == nil {
		return r.fallback
	}
	origins := database.AllowedOriginsSlice(stored.AllowedOrigins)
	if len(origins) == 0 {
		return r.fallback
	}
	return corsPolicy{origins: origins, credentials: stored.AllowCredentials, maxAge: stored.MaxAge}
}

// ServeHTTP implements http.Handler.
func (r *CORSReloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if st := r.state.Load(); st != nil {
		st.handler.ServeHTTP(w, req)
		return
	}
	if r.next != nil {
		r.next.ServeHTTP(w, req)
	}
}
