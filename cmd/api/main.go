package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/suggestion-service/internal/api/http"
	"github.com/spec-kit/suggestion-service/internal/api/http/handlers"
	"github.com/spec-kit/suggestion-service/internal/auth"
	"github.com/spec-kit/suggestion-service/internal/config"
	"github.com/spec-kit/suggestion-service/internal/events"
	"github.com/spec-kit/suggestion-service/internal/observability"
	"github.com/spec-kit/suggestion-service/internal/persistence"
	"github.com/spec-kit/suggestion-service/internal/repository"
	"github.com/spec-kit/suggestion-service/internal/service"
	"github.com/spec-kit/suggestion-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	suggestionRepo := repository.NewSuggestionRepository(pool)
	voteRepo := repository.NewVoteRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	activityService := service.NewActivityService(redis.ClientHandle(), logger)
	worker.StartActivityWorker(dispatcher, activityService, logger)

	authService := service.NewAuthService(*cfg, userRepo, dispatcher)
	suggestionService := service.NewSuggestionService(suggestionRepo, voteRepo, dispatcher)
	votingService := service.NewVotingService(suggestionRepo, voteRepo, dispatcher)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	loginLimiter := auth.NewLoginLimiter(
		time.Duration(cfg.Auth.LoginWindowSeconds)*time.Second,
		cfg.Auth.LoginMaxAttempts,
	)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, loginLimiter, cfg.Auth),
		Users:          handlers.NewUsersHandler(),
		Suggestions:    handlers.NewSuggestionsHandler(suggestionService, votingService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
