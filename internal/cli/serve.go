package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/tomb.v2"
	"gorm.io/gorm"

	_ "github.com/tbourn/pedidos-backend/docs"
	"github.com/tbourn/pedidos-backend/internal/auth"
	"github.com/tbourn/pedidos-backend/internal/classifier"
	"github.com/tbourn/pedidos-backend/internal/config"
	httpapi "github.com/tbourn/pedidos-backend/internal/http"
	"github.com/tbourn/pedidos-backend/internal/http/middleware"
	"github.com/tbourn/pedidos-backend/internal/observability"
	"github.com/tbourn/pedidos-backend/internal/queue"
	"github.com/tbourn/pedidos-backend/internal/realtime"
	"github.com/tbourn/pedidos-backend/internal/repo"
	"github.com/tbourn/pedidos-backend/internal/scheduler"
	"github.com/tbourn/pedidos-backend/internal/services"
	"github.com/tbourn/pedidos-backend/internal/sysutil"
	"github.com/tbourn/pedidos-backend/internal/telegram"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Migrate         bool
	ShutdownTimeout time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server, the Telegram bot and the background jobs",
		Long: `Run the dashboard API and realtime websocket, poll Telegram when
TELEGRAM_TOKEN is set, and schedule the periodic summary and cleanup jobs.

Optional integrations are enabled by their settings: REDIS_ADDR shares
events and rate limits across replicas, AMQP_URL mirrors events to a queue,
GEMINI_API_KEY enables message classification.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Migrate, "migrate", envDefault("DB_AUTO_MIGRATE", true), "apply schema migrations on startup")
	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 15*time.Second, "grace period for in-flight requests")

	return cmd
}

func envDefault(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return sysutil.IsTruthy(v)
	}
	return def
}

// server is the set of long-running components serve supervises.
type server struct {
	http      *http.Server
	bot       *telegram.Bot
	bridge    *realtime.RedisBridge
	scheduler *scheduler.Scheduler
	orders    *services.OrderService
	closers   []func()
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger := opts.Config, opts.Logger

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, Version, sysutil.Environment(cfg.GinMode))
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}

	db, closeDB, err := openDB(cfg)
	if err != nil {
		return err
	}
	if opts.Migrate {
		if err := repo.AutoMigrate(db); err != nil {
			closeDB()
			return fmt.Errorf("migrate: %w", err)
		}
	}

	srv, err := build(ctx, cfg, db, logger)
	if err != nil {
		closeDB()
		return err
	}
	srv.closers = append(srv.closers, closeDB)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	t, tctx := tomb.WithContext(sigCtx)

	t.Go(func() error {
		logger.Info().Str("addr", srv.http.Addr).Str("version", Version).Msg("http server listening")
		if err := srv.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if srv.bot != nil {
		t.Go(func() error { return srv.bot.Run(tctx) })
	}
	if srv.bridge != nil {
		t.Go(func() error {
			if err := srv.bridge.Run(tctx); err != nil {
				logger.Error().Err(err).Msg("redis bridge stopped; events stay local")
			}
			return nil
		})
	}
	srv.scheduler.Start(tctx)

	<-t.Dying()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	if err := srv.http.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	if err := srv.scheduler.Stop(); err != nil {
		logger.Warn().Err(err).Msg("scheduler stop")
	}
	runErr := t.Wait()
	srv.orders.Wait()
	for i := len(srv.closers) - 1; i >= 0; i-- {
		srv.closers[i]()
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("otel shutdown")
	}

	if runErr != nil && !errors.Is(runErr, sigCtx.Err()) {
		return runErr
	}
	logger.Info().Msg("stopped")
	return nil
}

// build wires the services, integrations and HTTP handler from cfg.
func build(ctx context.Context, cfg config.Config, db *gorm.DB, logger zerolog.Logger) (*server, error) {
	srv := &server{}

	hub := realtime.NewHub(logger)
	events := services.Fanout{hub}

	var limiter middleware.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		srv.closers = append(srv.closers, func() { _ = rdb.Close() })
		srv.bridge = realtime.NewRedisBridge(rdb, cfg.Redis.Channel, hub, logger)
		events = append(events, srv.bridge)
		limiter = middleware.NewRedisLimiter(rdb, "pedidos:ratelimit:", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.AMQP.URL != "" {
		pub := queue.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue, queue.Dial, logger)
		srv.closers = append(srv.closers, func() { _ = pub.Close() })
		events = append(events, pub)
	}

	authSvc := services.NewAuthService(db, auth.NewIssuer(cfg.Auth.SecretKey, cfg.Auth.AccessTTL), cfg.Auth.RefreshTTL, cfg.Auth.RotateRefresh)
	dispatcher := services.NewDispatcher(db, nil)
	engine := services.NewLifecycleEngine(db, cfg.StrictTransitions)
	srv.orders = services.NewOrderService(db, engine, dispatcher, events, cfg.AsyncNotify)
	stats := services.NewStatsService(db)

	var (
		cls classifier.Classifier
		tr  classifier.Transcriber
	)
	if cfg.Gemini.APIKey != "" {
		g, err := classifier.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		cls, tr = g, g
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set; chat messages are logged but not classified")
	}
	intake := services.NewIntakeService(db, cls, tr, events)

	if cfg.Telegram.Token != "" {
		api, err := telegram.NewAPI(cfg.Telegram.Token)
		if err != nil {
			return nil, err
		}
		srv.bot = telegram.New(api, intake, srv.orders, stats, logger)
		dispatcher.Sender = srv.bot
	} else {
		logger.Warn().Msg("TELEGRAM_TOKEN not set; notifications are recorded as failed")
	}

	summary := services.NewSummaryService(db, dispatcher, cfg.Telegram.SummaryChatID)
	srv.scheduler = scheduler.New(logger,
		scheduler.Job{
			Name:     "summary",
			Interval: cfg.Jobs.SummaryInterval,
			Run: func(ctx context.Context) error {
				_, err := summary.Send(ctx)
				return err
			},
		},
		scheduler.Job{
			Name:     "token_sweep",
			Interval: cfg.Jobs.TokenSweepInterval,
			Run: func(ctx context.Context) error {
				n, err := authSvc.SweepExpired(ctx)
				if n > 0 {
					logger.Info().Int64("removed", n).Msg("expired refresh tokens removed")
				}
				return err
			},
		},
		scheduler.Job{
			Name:     "idempotency_sweep",
			Interval: cfg.Jobs.TokenSweepInterval,
			Run: func(ctx context.Context) error {
				_, err := repo.DeleteExpiredIdempotency(ctx, db, time.Now().UTC())
				return err
			},
		},
	)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:      db,
		Auth:    authSvc,
		Users:   services.NewUserService(db),
		Orders:  srv.orders,
		Stats:   stats,
		Extras:  services.NewExtrasService(db, events),
		WS:      realtime.NewWSServer(hub, authSvc, cfg.CORS.AllowedOrigins, logger),
		Limiter: limiter,
	}, cfg)

	srv.http = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	return srv, nil
}
