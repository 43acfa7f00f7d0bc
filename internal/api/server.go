// Package api exposes the claim workflow over HTTP. Handlers translate
// between wire shapes and the workflow engine; they never touch claim state
// directly.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/claimflow/internal/attachment"
	"github.com/Veraticus/claimflow/internal/model"
	"github.com/Veraticus/claimflow/internal/service"
	"github.com/Veraticus/claimflow/internal/workflow"
)

// Server wires the HTTP surface to the workflow engine.
type Server struct {
	engine   *workflow.Engine
	store    service.Storage
	uploads  *attachment.Store
	secret   string
	tokenTTL time.Duration
	router   *gin.Engine
}

// NewServer builds the server and its route table.
func NewServer(engine *workflow.Engine, store service.Storage, uploads *attachment.Store, secret string, tokenTTL time.Duration) *Server {
	s := &Server{
		engine:   engine,
		store:    store,
		uploads:  uploads,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the root HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	// Uploaded receipts are served straight from disk; references returned
	// by the upload endpoint resolve here.
	router.Static(strings.TrimSuffix(attachment.ReferencePrefix, "/"), s.uploads.Dir())

	public := router.Group("/api")
	{
		public.POST("/login", s.handleLogin)
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	protected := router.Group("/api")
	protected.Use(s.requireAuth())
	{
		protected.GET("/profile", s.handleProfile)
		protected.POST("/uploads/receipt", s.handleUploadReceipt)

		protected.GET("/claims", s.handleListClaims)
		protected.GET("/claims/stats", s.handleStats)
		protected.GET("/claims/:id", s.handleGetClaim)

		employee := protected.Group("")
		employee.Use(requireRole(model.RoleEmployee))
		{
			employee.POST("/claims", s.handleCreateClaim)
			employee.DELETE("/claims/:id", s.handleDeleteClaim)
		}

		manager := protected.Group("")
		manager.Use(requireRole(model.RoleManager))
		{
			manager.GET("/manager/queue", s.handleManagerQueue)
			manager.POST("/manager/claims/:id/decision", s.handleManagerDecision)
		}

		finance := protected.Group("")
		finance.Use(requireRole(model.RoleFinance))
		{
			finance.GET("/finance/queue", s.handleFinanceQueue)
			finance.POST("/finance/claims/:id/decision", s.handleFinanceDecision)
			finance.POST("/finance/claims/:id/paid", s.handleMarkPaid)
		}

		staff := protected.Group("")
		staff.Use(requireRole(model.RoleManager, model.RoleFinance))
		{
			staff.GET("/users", s.handleListUsers)
		}
	}

	return router
}

// Run serves HTTP until the context is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
