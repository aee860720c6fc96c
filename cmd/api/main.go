package main

import (
	"context"
	"log"
	"time"

	"ripple-chat/internal/config"
	"ripple-chat/internal/handler"
	"ripple-chat/internal/redis"
	"ripple-chat/internal/server"
	"ripple-chat/internal/services"
	"ripple-chat/internal/storage"
	"ripple-chat/internal/store"
	"ripple-chat/internal/websocket"
	"ripple-chat/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.New(cfg.Server.Environment)
	logger.SetGlobalLogger(l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.New()

	// Redis is optional; presence and rate limiting degrade gracefully
	// without it.
	var presence *redis.PresenceStore
	var limiter *redis.RateLimiter
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			l.Errorf("Redis unavailable, presence and rate limiting disabled: %v", err)
		} else {
			defer redisClient.Close()
			presence = redis.NewPresenceStore(redisClient, 5*time.Minute)
			limiter = redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())
		}
	}

	// The blob store is optional too; uploads fail cleanly without it.
	var blobs services.BlobStore
	if cfg.S3.Bucket != "" {
		s3Client, err := storage.NewClient(ctx, cfg.S3)
		if err != nil {
			l.Errorf("S3 unavailable, uploads disabled: %v", err)
		} else {
			blobs = s3Client
		}
	}

	hub := websocket.NewHub(l)
	go hub.Run(ctx)

	authService := services.NewAuthService(cfg)
	userService := services.NewUserService(st, presence)
	chatService := services.NewChatService(st, hub)
	messageService := services.NewMessageService(st, hub)
	statusService := services.NewStatusService(st, hub)
	uploadService := services.NewUploadService(blobs)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		User:    handler.NewUserHandler(userService),
		Chat:    handler.NewChatHandler(chatService),
		Message: handler.NewMessageHandler(messageService),
		Status:  handler.NewStatusHandler(statusService),
		Upload:  handler.NewUploadHandler(uploadService),
		WS:      websocket.NewHandler(authService, userService, hub),
	}, authService, userService, limiter)

	if err := srv.Start(); err != nil {
		l.Errorf("Server exited with error: %v", err)
	}
}
