package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/etutor-gateway/internal/api/http"
	"github.com/spec-kit/etutor-gateway/internal/api/http/handlers"
	"github.com/spec-kit/etutor-gateway/internal/auth"
	"github.com/spec-kit/etutor-gateway/internal/config"
	"github.com/spec-kit/etutor-gateway/internal/events"
	"github.com/spec-kit/etutor-gateway/internal/observability"
	"github.com/spec-kit/etutor-gateway/internal/persistence"
	"github.com/spec-kit/etutor-gateway/internal/repository"
	"github.com/spec-kit/etutor-gateway/internal/service"
	"github.com/spec-kit/etutor-gateway/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	var mysqlDB *sql.DB
	if cfg.Store.Users == config.StoreMySQL {
		mysqlDB, err = persistence.OpenMySQL(ctx, cfg.MySQL, logger)
		if err != nil {
			logger.Fatal("failed to connect mysql", zap.Error(err))
		}
		defer mysqlDB.Close()
		userRepo = repository.NewMySQLUserRepository(mysqlDB)
	}
	courseRepo := repository.NewCourseRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)

	var (
		redisStore  *persistence.Redis
		redisClient *redis.Client
	)
	if cfg.RateLimit.Enabled && cfg.RateLimit.Backend == config.RateLimitRedis {
		redisStore = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redisStore.Close()
		redisClient = redisStore.Handle()
	}

	dispatcher := events.NewInMemoryDispatcher()
	var publisher events.Publisher = events.NewLogPublisher(logger)
	if cfg.RabbitMQ.Enabled {
		publisher = events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
	}
	defer publisher.Close() //nolint:errcheck

	auditWorker := worker.NewAuditWorker(publisher, cfg.RabbitMQ.BufferSize, cfg.RabbitMQ.PublishTimeout(), logger)
	auditWorker.Register(dispatcher)
	workerCtx, stopWorker := context.WithCancel(ctx)
	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		auditWorker.Run(workerCtx)
	}()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		Dispatcher: dispatcher,
	})
	userService := service.NewUserService(userRepo, dispatcher)
	courseService := service.NewCourseService(courseRepo, userRepo)
	appointmentService := service.NewAppointmentService(service.AppointmentDependencies{
		AppointmentRepo: appointmentRepo,
		UserRepo:        userRepo,
		CourseRepo:      courseRepo,
		Dispatcher:      dispatcher,
	})

	gate := auth.NewGate(auth.GateConfig{
		Tokens:     tokens,
		APIKeys:    auth.NewAPIKeyVerifier(cfg.Auth.APIKey),
		Users:      userRepo,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	if cfg.Auth.APIKey == "" {
		logger.Warn("AUTH_API_KEY is not set, integration routes will reject every request")
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ErrorHandler:          httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisStore, mysqlDB),
		Users:        handlers.NewUsersHandler(authService, userService),
		Admin:        handlers.NewAdminHandler(userService, metrics),
		Courses:      handlers.NewCoursesHandler(courseService),
		Appointments: handlers.NewAppointmentsHandler(appointmentService),
		Integrations: handlers.NewIntegrationsHandler(userService),
		Gate:         gate,
		RateLimiter:  httptransport.NewRateLimiter(cfg.RateLimit, redisClient, logger),
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	stopWorker()
	workers.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
