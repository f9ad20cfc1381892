package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	_ "github.com/yourusername/talatrivia-api/docs"
	"github.com/yourusername/talatrivia-api/internal/config"
	"github.com/yourusername/talatrivia-api/internal/domain/repository"
	"github.com/yourusername/talatrivia-api/internal/handler"
	"github.com/yourusername/talatrivia-api/internal/middleware"
	pgrepo "github.com/yourusername/talatrivia-api/internal/repository/postgres"
	redisrepo "github.com/yourusername/talatrivia-api/internal/repository/redis"
	"github.com/yourusername/talatrivia-api/internal/service"
	ws "github.com/yourusername/talatrivia-api/internal/websocket"
	"github.com/yourusername/talatrivia-api/pkg/auth"
	"github.com/yourusername/talatrivia-api/pkg/database"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations, bootstrap the admin account and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	env, err := openEnv(configPath)
	if err != nil {
		return err
	}
	defer env.close()
	cfg, log := env.cfg, env.log

	if err := database.MigrateDB(env.db, cfg.Database.MigrationsPath, log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := connectRedis(ctx, cfg.Redis, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Репозитории
	userRepo := pgrepo.NewUserRepo(env.db)
	questionRepo := pgrepo.NewQuestionRepo(env.db)
	triviaRepo := pgrepo.NewTriviaRepo(env.db)
	gameRepo := pgrepo.NewGameRepo(env.db)
	rankingRepo := pgrepo.NewRankingRepo(env.db)

	var cache repository.CacheRepository
	if redisClient != nil {
		cacheRepo, err := redisrepo.NewCacheRepo(redisClient)
		if err != nil {
			return err
		}
		cache = cacheRepo
	}

	// Live-лента рейтинга
	hubOpts := ws.HubOptions{BufferSize: cfg.WebSocket.BufferSize, Channel: cfg.WebSocket.Channel}
	if cfg.WebSocket.Cluster && redisClient != nil {
		pubsub, err := ws.NewRedisPubSub(redisClient, log)
		if err != nil {
			return err
		}
		defer pubsub.Close()
		hubOpts.PubSub = pubsub
	}
	hub := ws.NewHub(log, hubOpts)

	// Сервисы
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL())
	if err != nil {
		return err
	}
	rankingService := service.NewRankingService(rankingRepo, userRepo, cache, hub, service.RankingOptions{
		CacheTTL:     cfg.Ranking.CacheTTL(),
		DefaultLimit: cfg.Ranking.DefaultLimit,
		LiveLimit:    cfg.Ranking.LiveLimit,
	}, log)
	authService := service.NewAuthService(userRepo, jwtService, log)
	userService := service.NewUserService(userRepo, rankingService, log)
	questionService := service.NewQuestionService(questionRepo, log)
	triviaService := service.NewTriviaService(triviaRepo, newNotifier(cfg.Email, log), log)
	gameService := service.NewGameService(gameRepo, rankingService, log)

	seedData, err := service.LoadSeedData()
	if err != nil {
		return err
	}
	seedService := service.NewSeedService(userRepo, questionRepo, triviaRepo, seedData, log)
	if err := seedService.Bootstrap(ctx, service.AdminAccount{
		FullName: cfg.Bootstrap.AdminName,
		Email:    cfg.Bootstrap.AdminEmail,
		Password: cfg.Bootstrap.AdminPassword,
	}, cfg.Bootstrap.DemoQuestions); err != nil {
		return err
	}

	// HTTP
	routes := &handler.Router{
		Auth: handler.NewAuthHandler(authService, handler.CookieOptions{
			Name:   cfg.Auth.CookieName,
			Domain: cfg.Auth.CookieDomain,
			Secure: cfg.Auth.CookieSecure || cfg.Server.IsRelease(),
		}, log),
		Users:          handler.NewUserHandler(userService, log),
		Questions:      handler.NewQuestionHandler(questionService, log),
		Trivias:        handler.NewTriviaHandler(triviaService, log),
		Game:           handler.NewGameHandler(gameService, log),
		Ranking:        handler.NewRankingHandler(rankingService, log),
		WS:             handler.NewWSHandler(hub, rankingService, cfg.CORS.AllowOrigins, log),
		Health:         handler.NewHealthHandler(healthChecks(env, redisClient)...).WithLiveFeed(hub),
		AuthMiddleware: middleware.NewAuthMiddleware(authService, cfg.Auth.CookieName, log),
		Limiter:        middleware.NewRateLimiter(redisClient, cfg.RateLimit.Enabled, log),
		Limits: handler.RateLimits{
			LoginPerMin:   cfg.RateLimit.LoginPerMin,
			GeneralPerMin: cfg.RateLimit.GeneralPerMin,
			HealthPerMin:  cfg.RateLimit.HealthPerMin,
		},
	}
	if cfg.Testing.Enabled {
		log.Warn("Testing endpoints are enabled")
		routes.Seed = handler.NewSeedHandler(seedService, log)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      newRouter(cfg, log, routes),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		log.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		triviaService.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Server stopped with error")
		return err
	}
	log.Info("Server exited properly")
	return nil
}

func newRouter(cfg *config.Config, log logrus.FieldLogger, routes *handler.Router) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log))

	if cfg.Server.IsRelease() {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.WithError(err).Warn("Failed to set trusted proxies")
		}
	} else if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		log.WithError(err).Warn("Failed to set trusted proxies")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	routes.Register(router)
	return router
}

func newNotifier(cfg config.EmailConfig, log logrus.FieldLogger) service.AssignmentNotifier {
	if cfg.ResendAPIKey == "" {
		return service.NewNoopNotifier(log)
	}
	notifier, err := service.NewResendNotifier(cfg.ResendAPIKey, cfg.From, cfg.AppURL, log)
	if err != nil {
		log.WithError(err).Warn("Email notifications disabled")
		return service.NewNoopNotifier(log)
	}
	return notifier
}

func healthChecks(e *env, redisClient redis.UniversalClient) []handler.HealthChecker {
	checks := []handler.HealthChecker{handler.CheckFunc{
		CheckName: "database",
		Fn: func(ctx context.Context) error {
			sqlDB, err := e.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if redisClient != nil {
		checks = append(checks, handler.CheckFunc{
			CheckName: "redis",
			Fn: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		})
	}
	return checks
}
