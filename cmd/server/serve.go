package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskflow/api/handler"
	"github.com/fastygo/taskflow/api/view"
	"github.com/fastygo/taskflow/internal/config"
	"github.com/fastygo/taskflow/internal/infrastructure/boltdb"
	"github.com/fastygo/taskflow/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskflow/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskflow/internal/infrastructure/redis"
	"github.com/fastygo/taskflow/internal/middleware"
	"github.com/fastygo/taskflow/internal/realtime"
	"github.com/fastygo/taskflow/internal/router"
	"github.com/fastygo/taskflow/internal/services"
	"github.com/fastygo/taskflow/internal/services/lifecycle"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/pkg/logger"
	"github.com/fastygo/taskflow/repository"
	boltRepo "github.com/fastygo/taskflow/repository/bolt"
	"github.com/fastygo/taskflow/repository/postgres"
	redisRepo "github.com/fastygo/taskflow/repository/redis"
	"github.com/fastygo/taskflow/usecase"
	authUC "github.com/fastygo/taskflow/usecase/auth"
	profileUC "github.com/fastygo/taskflow/usecase/profile"
	taskUC "github.com/fastygo/taskflow/usecase/task"
	"github.com/fastygo/taskflow/usecase/taskview"
)

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)
	defer func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			zapLogger.Error("graceful shutdown error", zap.Error(err))
		}
	}()

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	sessionRepo, redisClient, sessionProbe, err := openSessions(appCtx, cfg, manager, zapLogger)
	if err != nil {
		return err
	}

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)

	hub := realtime.NewHub(taskUC.Loader(taskRepo), realtime.Config{
		Buffer:      cfg.Realtime.SubscriberBuffer,
		LoadTimeout: cfg.Realtime.LoadTimeout,
	}, zapLogger)
	manager.Register("realtime_hub", func(ctx context.Context) error {
		hub.Close()
		return nil
	})
	startChangeFeed(appCtx, cfg, pool, hub, manager, zapLogger)

	mon := monitor.New(pool, redisClient, sessionProbe, hub, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	authUseCase := authUC.New(userRepo, authUC.Config{
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		BcryptCost:        cfg.Auth.BcryptCost,
		TokenSecret:       cfg.JWT.Secret,
		TokenIssuer:       cfg.JWT.Issuer,
		TokenTTL:          cfg.JWT.TTL,
	}, zapLogger)
	taskUseCase := taskUC.New(taskRepo, hub, taskUC.Options{NotifyOnWrite: !cfg.Realtime.Listen}, zapLogger)
	profileUseCase := profileUC.New(userRepo, taskRepo, zapLogger)

	dispatcher := usecase.NewDispatcher()
	taskview.RegisterCommands(dispatcher)
	views := taskview.NewRegistry()
	manager.Register("task_views", func(ctx context.Context) error {
		views.UnmountAll()
		return nil
	})

	renderer, err := view.NewRenderer()
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout, cfg.Session.CookieName)
	sessions := apiHandler.NewSessions(sessionRepo, apiHandler.CookieConfig{
		Name:   cfg.Session.CookieName,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.CookieSecure,
	})

	handlers := router.Handlers{
		Landing: apiHandler.NewLandingHandler(authUseCase, sessions, renderer, ctxAdapter, zapLogger),
		TaskPage: apiHandler.NewTaskPageHandler(apiHandler.TaskPageConfig{
			Identity:    authUseCase,
			Tasks:       taskUseCase,
			Sessions:    sessions,
			Views:       views,
			Dispatcher:  dispatcher,
			Renderer:    renderer,
			Heartbeat:   cfg.Realtime.HeartbeatInterval,
			BaseContext: appCtx,
		}, ctxAdapter, zapLogger),
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		serveErr <- server.ListenAndServe(cfg.Address())
	}()
	manager.Register("http_server", func(ctx context.Context) error {
		cancel()
		return server.ShutdownWithContext(ctx)
	})

	select {
	case <-appCtx.Done():
		return nil
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server crashed: %w", err)
		}
		return nil
	}
}

// openSessions builds the configured session repository. The Redis client is
// returned for health checks; the probe is set for the embedded store.
func openSessions(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (repository.SessionRepository, *redislib.Client, monitor.SessionProbe, error) {
	switch cfg.Session.Driver {
	case config.SessionDriverBolt:
		store, err := boltdb.Open(cfg.Session.BoltPath, "sessions")
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open session store: %w", err)
		}
		manager.Register("session_store", func(ctx context.Context) error {
			return store.Close()
		})

		repo := boltRepo.NewSessionRepository(store, cfg.Session.TTL)
		sweeper := services.NewSessionSweeper(repo, logger, services.SweeperConfig{Interval: cfg.Session.SweepInterval})
		sweeper.Start()
		manager.Register("session_sweeper", func(ctx context.Context) error {
			sweeper.Stop(ctx)
			return nil
		})
		logger.Info("sessions stored in bolt", zap.String("path", cfg.Session.BoltPath))
		return repo, nil, repo, nil

	default:
		client, err := redisInfra.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		manager.Register("redis", func(ctx context.Context) error {
			return client.Close()
		})
		return redisRepo.NewSessionRepository(client, cfg.Session.TTL), client, nil, nil
	}
}

// startChangeFeed forwards Postgres task notifications to the hub when enabled.
func startChangeFeed(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, hub *realtime.Hub, manager *lifecycle.Manager, logger *zap.Logger) {
	if !cfg.Realtime.Listen {
		logger.Info("change feed disabled, notifying on local writes only")
		return
	}
	listener := pgInfra.NewListener(pool, cfg.Realtime.Channel, cfg.Realtime.ReconnectDelay, logger)
	manager.Go(ctx, "change_feed", func(ctx context.Context) error {
		return listener.Run(ctx, hub.Notify, hub.NotifyAll)
	})
}
