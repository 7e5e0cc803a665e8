package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shopassist/internal/api/handlers"
	"shopassist/internal/api/middleware"
	"shopassist/internal/config"
	"shopassist/internal/database"
	"shopassist/internal/logger"
	"shopassist/internal/store"
	syncer "shopassist/internal/sync"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(
	cfg *config.Config,
	logger *logger.Logger,
	db *database.Database,
	options *store.Options,
	messenger *syncer.Messenger,
	orchestrator *syncer.Orchestrator,
	scheduler *syncer.Scheduler,
) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(messenger, options, logger)
	syncHandler := handlers.NewSyncHandler(db.DB, orchestrator, messenger, scheduler, options, logger)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Chat relay
		v1.GET("/chat/nonce", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"nonce": middleware.ChatNonce(cfg.NonceSecret, time.Now())})
		})

		chat := v1.Group("", middleware.RequireNonce(cfg.NonceSecret))
		{
			chat.POST("/chat", chatHandler.Chat)
			chat.POST("/chat/stream", chatHandler.ChatStream)
			chat.POST("/chat/history", chatHandler.History)
		}

		// Admin sync surface
		admin := v1.Group("", middleware.RequireAdmin(cfg.AdminToken))
		{
			admin.POST("/sync/now", syncHandler.SyncNow)
			admin.POST("/sync/full", syncHandler.SyncFull)
			admin.GET("/sync/progress", syncHandler.Progress)
			admin.GET("/sync/connection", syncHandler.Connection)
			admin.DELETE("/content/:type/:id", syncHandler.DeleteContent)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// No write timeout: chat streams stay open as long as the assistant
		// keeps producing tokens.
		IdleTimeout: 60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
