package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/config"
	"github.com/bellringer/quiz-api/internal/handler"
	"github.com/bellringer/quiz-api/internal/middleware"
	pgRepo "github.com/bellringer/quiz-api/internal/repository/postgres"
	redisRepo "github.com/bellringer/quiz-api/internal/repository/redis"
	"github.com/bellringer/quiz-api/internal/service"
	"github.com/bellringer/quiz-api/internal/service/quizgen"
	"github.com/bellringer/quiz-api/pkg/auth"
	"github.com/bellringer/quiz-api/pkg/database"
	"github.com/bellringer/quiz-api/pkg/logger"
	"github.com/bellringer/quiz-api/pkg/metrics"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	zlog, err := logger.New(cfg.Log, cfg.Server.Mode)
	if err != nil {
		log.Printf("Failed to init logger: %v", err)
		os.Exit(1)
	}
	defer func() { _ = zlog.Sync() }()
	zlog.Info("Configuration loaded", append([]zap.Field{zap.String("path", configPath)}, cfg.LogFields()...)...)

	if err := run(cfg, zlog); err != nil {
		zlog.Error("Server stopped with error", zap.Error(err))
		_ = zlog.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем подключение к PostgreSQL
	startupCtx, startupCancel := context.WithTimeout(ctx, 15*time.Second)
	defer startupCancel()

	db, err := database.NewPostgresDB(startupCtx, cfg.Database.PostgresConnectionString(), zlog, gin.Mode() == gin.DebugMode)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Server.MigrationsPath, zlog); err != nil {
		return err
	}

	// Подключение к Redis: кеш истории и rate limiting
	redisClient, err := database.NewUniversalRedisClient(startupCtx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	zlog.Info("Successfully connected to Redis", zap.String("mode", cfg.Redis.Mode))

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	categoryRepo := pgRepo.NewCategoryRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	txManager := pgRepo.NewTxManager(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient, "bellringer:")
	if err != nil {
		return err
	}

	appMetrics := metrics.New()

	// Инициализируем сервисы
	quizService := service.NewQuizService(quizRepo, questionRepo, categoryRepo, cacheRepo, cfg.Cache.HistoryTTL(), zlog)
	generator, err := quizgen.NewGenerator(cfg.Generation, quizgen.Dependencies{
		History:    quizService,
		Categories: categoryRepo,
		Questions:  questionRepo,
		Quizzes:    quizRepo,
		Attempts:   attemptRepo,
		Tx:         txManager,
	}, nil, zlog.Named("quizgen"))
	if err != nil {
		return err
	}
	questionService := service.NewQuestionService(questionRepo, categoryRepo, generator, appMetrics, zlog)
	categoryService := service.NewCategoryService(categoryRepo, zlog)
	attemptService := service.NewAttemptService(attemptRepo, quizRepo, questionRepo, quizService, quizService, zlog)
	userService := service.NewUserService(userRepo, cfg.JWT.AdminRole, zlog)

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		return err
	}

	// Инициализируем роутер Gin
	router := gin.New()
	router.Use(middleware.Recovery(zlog), middleware.RequestLogger(zlog), appMetrics.Middleware())

	// В release не доверяем прокси-заголовкам, в разработке доверяем localhost
	trustedProxies := []string{"127.0.0.1", "::1"}
	if gin.Mode() == gin.ReleaseMode {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		zlog.Warn("Failed to set trusted proxies", zap.Error(err))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	rateLimiter := middleware.NewRateLimiter(redisClient, zlog)
	handler.RegisterRoutes(router, handler.Handlers{
		Question: handler.NewQuestionHandler(questionService, zlog),
		Category: handler.NewCategoryHandler(categoryService, zlog),
		Quiz:     handler.NewQuizHandler(quizService, zlog),
		Attempt:  handler.NewAttemptHandler(attemptService, zlog),
		User:     handler.NewUserHandler(userService, zlog),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": handler.PingFunc(sqlDB.PingContext),
			"redis": handler.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}),
		}, zlog),
	}, handler.RouteOptions{
		Auth: middleware.NewAuthMiddleware(jwtService, cfg.JWT.AdminRole),
		GenerateLimit: rateLimiter.Limit(middleware.GenerateRateLimitConfig(
			cfg.RateLimit.GenerateMax,
			time.Duration(cfg.RateLimit.GenerateWindowSec)*time.Second,
		)),
		Metrics: appMetrics.Handler(),
	})

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zlog.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		zlog.Info("Shutting down server...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	zlog.Info("Server exited properly")
	return nil
}
