package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/cook-with-ai/api/openapi"
	"github.com/benvon/cook-with-ai/internal/chat"
	"github.com/benvon/cook-with-ai/internal/config"
	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/benvon/cook-with-ai/internal/handlers"
	"github.com/benvon/cook-with-ai/internal/logger"
	"github.com/benvon/cook-with-ai/internal/metrics"
	"github.com/benvon/cook-with-ai/internal/middleware"
	"github.com/benvon/cook-with-ai/internal/preferences"
	"github.com/benvon/cook-with-ai/internal/queue"
	"github.com/benvon/cook-with-ai/internal/services/ai"
	"github.com/benvon/cook-with-ai/internal/services/auth"
	"github.com/benvon/cook-with-ai/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging, including AI prompts")
	envFile := flag.String("env-file", ".env", "Optional dotenv file to load before reading the environment")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(debugMode, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.String("version", version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("queue_meal_plans", cfg.QueueMealPlans),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
		zapLogger.Fatal("supabase_not_configured")
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	tracerProvider := initTracing(rootCtx, cfg, zapLogger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx, tracerProvider); err != nil {
			zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	if cfg.AutoMigrate {
		if err := db.Migrate(rootCtx); err != nil {
			zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
		}
		zapLogger.Info("database_schema_applied")
	}

	checks := map[string]handlers.Pinger{"database": db}

	// Redis backs the cross-instance send guard; without it each instance guards itself.
	var sendGuard chat.SendGuard
	if cfg.RedisURL != "" {
		redisClient, err := connectRedis(rootCtx, cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
		sendGuard = chat.NewRedisSendGuard(redisClient, cfg.RequestTimeout, cfg.SendDebounce)
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	} else {
		sendGuard = chat.NewMemorySendGuard(cfg.RequestTimeout, cfg.SendDebounce)
	}

	// Repositories
	usersRepo := database.NewUserRepository(db)
	conversationRepo := database.NewConversationRepository(db)
	messageRepo := database.NewMessageRepository(db)
	pantryRepo := database.NewPantryRepository(db)
	mealRepo := database.NewMealScheduleRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)

	// Meal plans are written inline unless a worker owns them
	var scheduler chat.MealScheduler = chat.NewDirectScheduler(mealRepo)
	if cfg.RabbitMQURL != "" {
		jobQueue, err := queue.Connect(rootCtx, cfg.RabbitMQURL, 0, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
		}
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		checks["queue"] = handlers.PingFunc(jobQueue.HealthCheck)

		if cfg.QueueMealPlans {
			scheduler = chat.NewQueueScheduler(jobQueue)
		}

		dlqGC := queue.NewGarbageCollector(jobQueue, cfg.DLQGCInterval, cfg.DLQRetention, zapLogger).WithMetrics(m)
		go func() {
			if err := dlqGC.Start(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", cfg.DLQGCInterval),
			zap.Duration("retention", cfg.DLQRetention),
		)
	}

	// AI
	provider, err := ai.NewDefaultRegistry().GetProvider(cfg.AIProvider, ai.ProviderConfig{
		APIKey:  cfg.AIAPIKey(),
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
		Logger:  zapLogger,
		Debug:   debugMode,
	})
	if err != nil {
		zapLogger.Fatal("failed_to_create_ai_provider", zap.String("provider", cfg.AIProvider), zap.Error(err))
	}
	responderOpts := []ai.ResponderOption{ai.WithMetrics(m)}
	if cfg.ResponderPersist {
		responderOpts = append(responderOpts, ai.WithPersistence(messageRepo))
	}
	responder := ai.NewResponder(provider, zapLogger, responderOpts...)

	// Chat
	sessions := chat.NewSessionStore(cfg.SessionIdleTTL, zapLogger, m)
	sessions.Start(rootCtx)
	manager := chat.NewManager(conversationRepo, messageRepo, zapLogger)
	sender := chat.NewMessageHandler(conversationRepo, messageRepo, responder, zapLogger,
		chat.WithSendGuard(sendGuard),
		chat.WithMealPlanner(chat.NewMealPlanner(scheduler, zapLogger, m)),
		chat.WithHandlerMetrics(m),
	)

	// Auth
	verifier := auth.NewVerifier(auth.NewJWKSManager(nil), cfg.SupabaseJWKSURL(), cfg.SupabaseIssuer())
	authClient := auth.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, nil)

	// Handlers
	chatHandler := handlers.NewChatHandler(sessions, manager, sender, zapLogger)
	conversationHandler := handlers.NewConversationHandler(sessions, manager, zapLogger)
	aiHandler := handlers.NewAIHandler(responder, zapLogger)
	pantryHandler := handlers.NewPantryHandler(pantryRepo, zapLogger)
	mealHandler := handlers.NewMealHandler(mealRepo, zapLogger)
	preferencesHandler := handlers.NewPreferencesHandler(preferences.NewManager(nil, usersRepo, zapLogger), zapLogger)
	authHandler := handlers.NewAuthHandler(authClient, sessions, zapLogger)
	healthChecker := handlers.NewHealthChecker(checks)
	openAPIHandler, err := handlers.NewOpenAPIHandler(openapi.Spec)
	if err != nil {
		zapLogger.Fatal("failed_to_load_openapi_spec", zap.Error(err))
	}

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order: the first one is outermost.
	if tracerProvider != nil {
		r.Use(otelmux.Middleware(telemetry.ServiceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, time.Minute)
	r.Use(corsReloader.Middleware())
	r.Use(middleware.MaxRequestSize(cfg.MaxRequestBytes))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(cfg.RequestTimeout, "/metrics"))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger, m))

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}
	openAPIHandler.RegisterRoutes(r)

	api := r.PathPrefix("/api/v1").Subrouter()
	requireAuth := middleware.Auth(verifier, usersRepo, zapLogger)
	optionalAuth := middleware.OptionalAuth(verifier, usersRepo, zapLogger)

	authRouter := api.PathPrefix("/auth").Subrouter()
	authHandler.RegisterRoutes(authRouter)
	protectedAuthRouter := authRouter.PathPrefix("").Subrouter()
	protectedAuthRouter.Use(requireAuth)
	authHandler.RegisterProtectedRoutes(protectedAuthRouter)

	// Chat, conversations and preferences answer anonymous callers too; the
	// handlers decide what needs a user.
	chatRouter := api.PathPrefix("/chat").Subrouter()
	chatRouter.Use(optionalAuth)
	chatHandler.RegisterRoutes(chatRouter)

	conversationsRouter := api.PathPrefix("/conversations").Subrouter()
	conversationsRouter.Use(optionalAuth)
	conversationHandler.RegisterRoutes(conversationsRouter)

	preferencesRouter := api.PathPrefix("/preferences").Subrouter()
	preferencesRouter.Use(optionalAuth)
	preferencesHandler.RegisterRoutes(preferencesRouter)

	aiRouter := api.PathPrefix("/ai").Subrouter()
	aiRouter.Use(requireAuth)
	aiHandler.RegisterRoutes(aiRouter)

	pantryRouter := api.PathPrefix("/pantry").Subrouter()
	pantryRouter.Use(requireAuth)
	pantryHandler.RegisterRoutes(pantryRouter)

	mealsRouter := api.PathPrefix("/meals").Subrouter()
	mealsRouter.Use(requireAuth)
	mealHandler.RegisterRoutes(mealsRouter)

	// Preflight requests; CORS headers are already set by the middleware
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// WriteTimeout leaves room for the request timeout so slow AI replies still reach the client
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go corsReloader.Start(rootCtx)

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	rootCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// initTracing returns nil when tracing is off or could not start
func initTracing(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) *sdktrace.TracerProvider {
	if !cfg.OTELEnabled {
		return nil
	}
	if cfg.OTELEndpoint == "" {
		zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		return nil
	}
	tp, err := telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: version,
		Endpoint:       cfg.OTELEndpoint,
		SampleRatio:    cfg.OTELSampleRatio,
	})
	if err != nil {
		zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		return nil
	}
	zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
	return tp
}

func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `{"version":%q,"timestamp":%q}`, version, time.Now().UTC().Format(time.RFC3339))
}
