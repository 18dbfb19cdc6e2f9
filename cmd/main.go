package main

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
	"github.com/programming666/personal-blog/config"
	_ "github.com/programming666/personal-blog/docs"
	"github.com/programming666/personal-blog/internal/handler"
	"github.com/programming666/personal-blog/internal/logger"
	"github.com/programming666/personal-blog/internal/metrics"
	"github.com/programming666/personal-blog/internal/middleware"
	"github.com/programming666/personal-blog/internal/model"
	"github.com/programming666/personal-blog/internal/repository"
	"github.com/programming666/personal-blog/internal/scheduler"
	"github.com/programming666/personal-blog/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title Personal Blog API
// @version 1.0
// @description Personal blog backend: accounts, user messages and administrator broadcasts

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization (format: Bearer {token})

func openDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	switch cfg.Driver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.Path), gormCfg)
	case "mysql", "":
		return gorm.Open(mysql.Open(cfg.GetDSN()), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func newDispatchLock(cfg *config.RedisConfig, log zerolog.Logger) (repository.DispatchLock, func(), error) {
	if !cfg.Enabled {
		log.Info().Msg("using in-process dispatch lock")
		return repository.NewMemoryDispatchLock(), func() {}, nil
	}

	client, err := repository.NewRedisClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Info().Str("addr", cfg.Host+":"+cfg.Port).Msg("using redis dispatch lock")
	return repository.NewRedisDispatchLock(client, cfg.KeyPrefix), func() { client.Close() }, nil
}

func main() {
	cfg, err := config.Load("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	metrics.Init()

	db, err := openDatabase(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to database")
	}
	if err := db.AutoMigrate(&model.User{}, &model.Message{}, &model.BroadcastMessage{}, &model.BroadcastSendDetail{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	lock, closeLock, err := newDispatchLock(&cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up dispatch lock")
	}
	defer closeLock()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	broadcastRepo := repository.NewBroadcastRepository(db)

	// Services
	messageService := service.NewMessageService(messageRepo, service.NewRecipientResolver(userRepo), cfg.Messaging, log)
	dispatcher := service.NewDispatcher(broadcastRepo, messageRepo, lock, cfg.Broadcast, log)
	broadcastService := service.NewBroadcastService(broadcastRepo, userRepo, dispatcher, cfg.Broadcast, log)
	authService := service.NewAuthService(userRepo, messageService, cfg, log)

	// Route guards. A disabled guard stays nil and is skipped.
	guards := handler.RouteGuards{Authenticate: middleware.AuthMiddleware(authService)}
	if cfg.RateLimit.Enabled {
		guards.RateLimit = middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst).Middleware()
	}
	if cfg.Turnstile.Enabled {
		guards.Turnstile = middleware.TurnstileMiddleware(service.NewTurnstileVerifier(cfg.Turnstile, log))
	}

	var githubHandler *handler.GitHubAuthHandler
	if cfg.GitHubOAuth.Enabled {
		githubHandler = handler.NewGitHubAuthHandler(authService, cfg, log)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.I18nMiddleware())

	handler.RegisterRoutes(r.Group("/api"), &handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		GitHub:     githubHandler,
		Messages:   handler.NewMessageHandler(messageService),
		Broadcasts: handler.NewBroadcastHandler(broadcastService),
		Users:      handler.NewUserHandler(service.NewUserService(userRepo, log)),
	}, guards)

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var recovery *scheduler.Recovery
	if cfg.Broadcast.RecoveryEnabled {
		grace := time.Duration(cfg.Broadcast.RecoveryGraceSeconds) * time.Second
		recovery, err = scheduler.NewRecovery(cfg.Broadcast.RecoverySpec, grace, broadcastService, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to set up broadcast recovery")
		}
		recovery.Start()
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("starting personal blog service")
		log.Info().Msgf("API documentation: http://%s/swagger/index.html", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	if recovery != nil {
		if err := recovery.Stop(ctx); err != nil {
			log.Error().Err(err).Msg("broadcast recovery shutdown")
		}
	}
	// interrupted broadcasts are marked failed and can be retried later
	if err := dispatcher.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("dispatcher shutdown")
	}
	log.Info().Msg("server stopped")
}
