package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/bytespace-io/bytespace/internal/adapter/discord"
	bshttp "github.com/bytespace-io/bytespace/internal/adapter/http"
	"github.com/bytespace-io/bytespace/internal/adapter/llmproxy"
	"github.com/bytespace-io/bytespace/internal/adapter/natsbus"
	"github.com/bytespace-io/bytespace/internal/adapter/natskv"
	"github.com/bytespace-io/bytespace/internal/adapter/otel"
	"github.com/bytespace-io/bytespace/internal/adapter/postgres"
	"github.com/bytespace-io/bytespace/internal/adapter/ristretto"
	"github.com/bytespace-io/bytespace/internal/adapter/s3"
	"github.com/bytespace-io/bytespace/internal/adapter/tiered"
	"github.com/bytespace-io/bytespace/internal/config"
	"github.com/bytespace-io/bytespace/internal/logger"
	"github.com/bytespace-io/bytespace/internal/middleware"
	"github.com/bytespace-io/bytespace/internal/port/llm"
	"github.com/bytespace-io/bytespace/internal/port/notifier"
	"github.com/bytespace-io/bytespace/internal/port/objectstore"
	"github.com/bytespace-io/bytespace/internal/resilience"
	"github.com/bytespace-io/bytespace/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(logger.New(cfg.Logging))

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx := context.Background()

	// --- Telemetry ---
	var metrics *otel.Metrics
	if cfg.OTel.Enabled {
		shutdown, err := otel.Init(ctx, cfg.Logging.Service, cfg.OTel.Endpoint)
		if err != nil {
			return fmt.Errorf("otel: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()

		metrics, err = otel.NewMetrics()
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	// --- PostgreSQL ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	store := postgres.NewStore(pool)

	// --- NATS: L2 cache bucket and invalidation bus ---
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name(cfg.Logging.Service))
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("jetstream: %w", err)
	}

	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("ristretto: %w", err)
	}
	defer l1.Close()

	l2, err := natskv.NewBucket(ctx, js, cfg.Cache.L2Bucket, cfg.Cache.TTL)
	if err != nil {
		return fmt.Errorf("nats kv: %w", err)
	}

	cache := tiered.New(l1, l2, cfg.Cache.TTL)

	bus := natsbus.New(nc)
	unsubscribe, err := bus.SubscribeInvalidations(func(tag string) {
		// A peer already dropped the shared L2 entry; only the local
		// tier needs clearing here.
		if err := cache.DeleteLocal(ctx, tag); err != nil {
			slog.Warn("peer invalidation failed", "tag", tag, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalidation subscriber: %w", err)
	}
	defer unsubscribe()

	// --- Outbound adapters ---
	var llmClient llm.Client
	var llmHealth func(ctx context.Context) error
	if cfg.LLM.URL != "" {
		client := llmproxy.NewClient(cfg.LLM.URL, cfg.LLM.MasterKey, cfg.LLM.Timeout)
		client.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
		llmClient = client
		llmHealth = client.Health
	}

	// Per-space webhook overrides still work without a global default URL.
	var notify notifier.Notifier = discord.NewNotifier(cfg.Discord.WebhookURL)

	var objects objectstore.Store
	if cfg.S3.Bucket != "" {
		s3Store, err := s3.New(ctx, cfg.S3.Bucket, cfg.S3.Region)
		if err != nil {
			return fmt.Errorf("s3: %w", err)
		}
		objects = s3Store
	}

	// --- Services ---
	authSvc := service.NewAuthService(store, &cfg.Auth)
	if err := authSvc.SeedDefaultAdmin(ctx); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	gate := service.NewGate(metrics)
	inv := service.NewInvalidator(cache, bus, metrics)
	spaceSvc := service.NewSpaceService(store, cache, gate, inv, notify, cfg.Cache.TTL)
	tidbitSvc := service.NewTidbitService(store, spaceSvc, gate, cache, inv, llmClient, notify, metrics, cfg.Cache.TTL)
	courseSvc := service.NewCourseService(store, spaceSvc, gate, inv)
	rubricSvc := service.NewRubricService(store, spaceSvc, gate, inv)
	uploadSvc := service.NewUploadService(objects, spaceSvc, gate, cfg.S3.PresignExpiry)

	healthChecks := map[string]func(ctx context.Context) error{
		"postgres": pool.Ping,
		"nats": func(_ context.Context) error {
			if !nc.IsConnected() {
				return fmt.Errorf("nats disconnected")
			}
			return nil
		},
	}
	if llmHealth != nil {
		healthChecks["llm"] = llmHealth
	}

	handlers := bshttp.NewHandlers(authSvc, gate, spaceSvc, tidbitSvc, courseSvc, rubricSvc, uploadSvc, healthChecks)

	// --- HTTP ---
	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopCleanup := limiter.StartCleanup(cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)
	defer stopCleanup()

	r := chi.NewRouter()
	r.Use(bshttp.CORS(cfg.Server.CORSOrigin))
	r.Use(bshttp.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(bshttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(limiter.Handler)
	if cfg.OTel.Enabled {
		r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	}
	r.Use(middleware.Auth(authSvc))

	bshttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
