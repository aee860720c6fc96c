package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ripple-chat/internal/config"
	"ripple-chat/internal/handler"
	"ripple-chat/internal/middleware"
	"ripple-chat/internal/redis"
	"ripple-chat/internal/services"
	"ripple-chat/internal/transport/httpdto"
	"ripple-chat/internal/websocket"
	"ripple-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.Server.Environment == logger.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Engine exposes the underlying router, mainly for tests that
// mount the full route table on an httptest server.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

type Handlers struct {
	User    *handler.UserHandler
	Chat    *handler.ChatHandler
	Message *handler.MessageHandler
	Status  *handler.StatusHandler
	Upload  *handler.UploadHandler
	WS      *websocket.Handler
}

func (s *Server) SetupRoutes(handlers *Handlers, auth *services.AuthService, users *services.UserService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	s.engine.GET("/ws", handlers.WS.Connect)

	authed := middleware.AuthMiddleware(auth, users)
	v1 := s.engine.Group("/v1", authed)
	{
		v1.POST("/auth/sync", handlers.User.Sync)
		v1.GET("/me", handlers.User.Me)
		v1.PATCH("/me", handlers.User.UpdateProfile)
		v1.POST("/me/heartbeat", handlers.User.Heartbeat)
		v1.GET("/users", handlers.User.List)

		v1.POST("/chats", handlers.Chat.Create)
		v1.GET("/chats", handlers.Chat.List)
		v1.GET("/chats/:id", handlers.Chat.GetByID)
		v1.PATCH("/chats/:id", handlers.Chat.Update)
		v1.GET("/chats/:id/members", handlers.Chat.Members)
		v1.POST("/chats/:id/members", handlers.Chat.AddMember)
		v1.DELETE("/chats/:id/members/:userId", handlers.Chat.RemoveMember)

		v1.GET("/chats/:id/messages", handlers.Message.List)
		v1.POST("/chats/:id/messages", middleware.MessageRateLimitMiddleware(limiter), handlers.Message.Send)
		v1.POST("/messages/:id/read", handlers.Message.MarkRead)

		v1.POST("/statuses", handlers.Status.Create)
		v1.GET("/statuses/feed", handlers.Status.Feed)
		v1.POST("/statuses/:id/view", handlers.Status.View)
		v1.GET("/statuses/:id/views", handlers.Status.ViewHistory)

		v1.POST("/uploads/image", handlers.Upload.UploadImage)
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.Server.Port)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.Server.Port)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
