// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"microtask_gateway/internal/admin"
	"microtask_gateway/internal/auth"
	"microtask_gateway/internal/config"
	"microtask_gateway/internal/dashboard"
	"microtask_gateway/internal/guard"
	"microtask_gateway/internal/imagehost"
	"microtask_gateway/internal/jobs"
	"microtask_gateway/internal/middleware"
	"microtask_gateway/internal/notification"
	"microtask_gateway/internal/payment"
	"microtask_gateway/internal/submission"
	"microtask_gateway/internal/task"
	"microtask_gateway/internal/withdrawal"
)

// Server holds the dependencies for the HTTP gateway.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	sessionExpiryJob *jobs.SessionExpiryJob
}

// NewServer wires the gateway's routes and middleware.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	routeGuard *guard.Guard,
	authHandler *auth.Handler,
	dashboardHandler *dashboard.Handler,
	taskHandler *task.Handler,
	submissionHandler *submission.Handler,
	withdrawalHandler *withdrawal.Handler,
	paymentHandler *payment.Handler,
	notificationHandler *notification.Handler,
	adminHandler *admin.Handler,
	imageHandler *imagehost.Handler,
	sessionExpiryJob *jobs.SessionExpiryJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Micro-task gateway is healthy!"})
	})

	v1 := router.Group("/api/v1")

	authHandler.RegisterRoutes(v1, routeGuard.Middleware())
	dashboardHandler.RegisterRoutes(v1, routeGuard)
	taskHandler.RegisterRoutes(v1, routeGuard)
	submissionHandler.RegisterRoutes(v1, routeGuard)
	withdrawalHandler.RegisterRoutes(v1, routeGuard)
	paymentHandler.RegisterRoutes(v1, routeGuard)
	notificationHandler.RegisterRoutes(v1, routeGuard)
	adminHandler.RegisterRoutes(v1, routeGuard)
	imageHandler.RegisterRoutes(v1, routeGuard)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:       httpServer,
		router:           router,
		cfg:              cfg,
		logger:           logger,
		sessionExpiryJob: sessionExpiryJob,
	}, nil
}

// Router exposes the gin engine for in-process testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	if s.sessionExpiryJob != nil {
		if err := s.sessionExpiryJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start session sweep job", zap.Error(err))
		}
	} else {
		s.logger.Info("Session sweep job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.sessionExpiryJob != nil {
		s.sessionExpiryJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
