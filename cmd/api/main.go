package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/zephy/zephy-api/internal/config"
	"github.com/zephy/zephy-api/internal/domain/chat"
	"github.com/zephy/zephy-api/internal/domain/community"
	"github.com/zephy/zephy-api/internal/domain/feed"
	"github.com/zephy/zephy-api/internal/domain/fitcheck"
	"github.com/zephy/zephy-api/internal/domain/poll"
	"github.com/zephy/zephy-api/internal/middleware"
	"github.com/zephy/zephy-api/internal/pkg/completion"
	"github.com/zephy/zephy-api/internal/pkg/database"
	"github.com/zephy/zephy-api/internal/pkg/identity"
	"github.com/zephy/zephy-api/internal/pkg/jwt"
	"github.com/zephy/zephy-api/internal/pkg/logger"
	"github.com/zephy/zephy-api/internal/pkg/metrics"
	"github.com/zephy/zephy-api/internal/pkg/ratelimit"
	pkgresponse "github.com/zephy/zephy-api/internal/pkg/response"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, LogFile: cfg.LogFile}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Zephy API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if err := metrics.RegisterDB(db.DB, "postgres"); err != nil {
		log.Warn().Err(err).Msg("Failed to register database metrics")
	}

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	limiter, err := newLimiter(ctx, cfg, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create rate limiter")
	}

	provider := newIdentityProvider(cfg)
	if provider == nil {
		log.Warn().Msg("Auth not configured; protected routes will return 500")
	}

	completer := completion.NewClient(completion.Config{
		BaseURL:     cfg.OpenAIBaseURL,
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: cfg.OpenAITemperature,
		Timeout:     cfg.OpenAITimeout,
	})
	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set; chat will return 500")
	}

	// ---------- Realtime feed ----------
	hub := feed.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Services ----------
	communityService := community.NewService(community.NewRepository(db), hub)
	pollService := poll.NewService(poll.NewRepository(db), hub)
	fitcheckService := fitcheck.NewService(fitcheck.NewRepository(db))
	chatService := chat.NewService(chat.NewRepository(db), completer, cfg.ChatHistoryWindow)

	health := []healthCheck{
		{name: "postgres", check: db},
		{name: "redis", check: database.RedisPinger{Client: redisClient}},
	}

	router := newRouter(cfg, routerDeps{
		provider:  provider,
		limiter:   limiter,
		health:    health,
		community: community.NewHandler(communityService),
		polls:     poll.NewHandler(pollService),
		fitcheck:  fitcheck.NewHandler(fitcheckService),
		chat:      chat.NewHandler(chatService),
		feed:      feed.NewHandler(hub),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// newLimiter picks the chat rate-limit store. Redis is opt-in; the in-memory
// store gets a background sweep so idle keys do not accumulate.
func newLimiter(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (*ratelimit.Limiter, error) {
	limits := ratelimit.Config{Window: cfg.ChatRateWindow, MaxRequests: cfg.ChatRateMax}

	if cfg.RateLimitStore == "redis" {
		if redisClient != nil {
			log.Info().Msg("Chat rate limit backed by Redis")
			return ratelimit.New(ratelimit.NewRedisStore(redisClient, "ratelimit:chat:"), limits)
		}
		log.Warn().Msg("RATE_LIMIT_STORE=redis but REDIS_URL is empty; using in-memory store")
	}

	store := ratelimit.NewMemoryStore()
	limiter, err := ratelimit.New(store, limits)
	if err != nil {
		return nil, err
	}

	go func() {
		ticker := time.NewTicker(limiter.Window())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := store.Sweep(now, limiter.Window()); n > 0 {
					log.Debug().Int("removed", n).Msg("Swept expired rate-limit buckets")
				}
			}
		}
	}()
	return limiter, nil
}

// newIdentityProvider prefers local JWT verification and falls back to the
// Supabase session endpoint. Nil means auth is not configured.
func newIdentityProvider(cfg *config.Config) identity.Provider {
	switch {
	case cfg.SupabaseJWTSecret != "":
		return jwt.NewVerifier(cfg.SupabaseJWTSecret, time.Hour)
	case cfg.SupabaseURL != "" && cfg.SupabaseAnonKey != "":
		return identity.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, 10*time.Second)
	default:
		return nil
	}
}

type pinger interface {
	PingContext(ctx context.Context) error
}

type healthCheck struct {
	name  string
	check pinger
}

type routerDeps struct {
	provider identity.Provider
	limiter  *ratelimit.Limiter
	health   []healthCheck

	community *community.Handler
	polls     *poll.Handler
	fitcheck  *fitcheck.Handler
	chat      *chat.Handler
	feed      *feed.Handler
}

func newRouter(cfg *config.Config, deps routerDeps) http.Handler {
	requireAuth := middleware.RequireAuth(deps.provider)
	optionalAuth := middleware.OptionalAuth(deps.provider)
	chatLimit := middleware.RateLimit(deps.limiter, time.Now)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics)

	// Production only allows the configured origins; none configured means
	// same-origin only. Development allows any origin.
	switch {
	case !cfg.IsProduction():
		r.Use(middleware.CORSHandler(nil))
	case len(cfg.AllowedOrigins) > 0:
		r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	}

	// WebSocket endpoint (before Compress)
	r.Get("/ws/communities", deps.feed.WebSocket)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := make(map[string]string, len(deps.health))
		healthy := true
		for _, hc := range deps.health {
			if err := hc.check.PingContext(ctx); err != nil {
				logger.LogWarn(r.Context(), "health check failed", "dependency", hc.name, "error", err.Error())
				checks[hc.name] = "down"
				healthy = false
				continue
			}
			checks[hc.name] = "up"
		}

		body := map[string]interface{}{"status": "ok", "version": version, "checks": checks}
		if !healthy {
			body["status"] = "degraded"
			pkgresponse.JSON(w, http.StatusServiceUnavailable, body)
			return
		}
		pkgresponse.OK(w, body)
	})
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(middleware.BodyLimit(cfg.BodyLimitBytes))

		r.Route("/api", func(r chi.Router) {
			r.Mount("/chat", deps.chat.Routes(requireAuth, optionalAuth, chatLimit))
			r.Mount("/communities/posts", deps.community.Routes(requireAuth, optionalAuth))
			r.Mount("/communities/polls", deps.polls.Routes(requireAuth, optionalAuth))
			r.Mount("/fitcheck", deps.fitcheck.Routes(requireAuth))
		})
	})

	return r
}
