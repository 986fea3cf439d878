package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"planroom/internal/api"
	"planroom/internal/models"
	"planroom/internal/provider"
	"planroom/internal/repository"
	"planroom/internal/service"
	"planroom/internal/storage"
	"planroom/internal/utils"
	"planroom/pkg/config"
	"planroom/pkg/logger"
)

func main() {
	// 載入應用程式配置（設定檔 + 環境變數）
	cfg, err := config.Load()
	if err != nil {
		l := logger.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Log)
	log := logger.L()

	// 初始化資料庫連接
	db, err := storage.NewPostgresDB(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	if err := db.AutoMigrate(&models.User{}, &models.Message{}, &models.UsageRecord{}); err != nil {
		log.Fatal().Err(err).Msg("failed to auto migrate database")
	}

	repos := repository.NewRepositories(db)

	// 沒有 API 金鑰時仍可聊天，AI 請求會收到未設定的通知
	generator := provider.NewAnthropic(cfg.AI.APIKey, cfg.AI.Model)
	if cfg.AI.APIKey == "" {
		log.Warn().Msg("ai.api_key not set, assistant disabled")
	}

	var (
		locker      service.RoomLocker = service.NewLocalRoomLocker()
		redisClient *redis.Client
	)
	if cfg.AI.LockBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("address", cfg.Redis.Address).Msg("failed to connect to redis")
		}
		locker = service.NewRedisRoomLocker(redisClient, cfg.Redis.KeyPrefix, cfg.AI.LockTTL)
	}

	services, err := service.NewServices(repos, generator, locker, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		// 重新啟動後舊 token 會失效
		secret = uuid.New().String()
		log.Warn().Msg("auth.jwt_secret not set, using an ephemeral secret")
	}
	tokens := utils.NewTokenManager(secret, cfg.Auth.TokenTTL)

	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger(log, "/api/health"))
	api.SetupRoutes(r, services, tokens)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to run server")
		}
	}()

	// 依序關閉：停止接受請求 → 關閉聊天連線 → 等待 AI 請求結算 → 關閉資料庫
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"planroom": func(ctx context.Context) error {
				log.Info().Msg("graceful shutdown initiated")

				err := srv.Shutdown(ctx)
				services.Hub.CloseAll()
				services.Assistant.Shutdown()

				if redisClient != nil {
					err = errors.Join(err, redisClient.Close())
				}
				return errors.Join(err, db.Close())
			},
		},
	)

	exitCode := <-wait
	log.Info().Int("exit_code", exitCode).Msg("server stopped")
	os.Exit(exitCode)
}
