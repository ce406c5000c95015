package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agrichain/handler"
)

// maxBodyBytes bounds request bodies; leaf photos arrive inline as data URIs.
const maxBodyBytes = 10 << 20

const correlationKey = "correlation_id"

// Server exposes the handler over plain HTTP for local and container use.
type Server struct {
	addr   string
	router *gin.Engine
	logger *slog.Logger
}

type Config struct {
	Addr    string
	Handler *handler.Handler
	Logger  *slog.Logger
}

func New(cfg Config) (*Server, error) {
	if cfg.Handler == nil {
		return nil, errors.New("server: handler must not be nil")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), correlation(), requestLogger(cfg.Logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	registerRoutes(router.Group("/api"), cfg.Handler)

	return &Server{addr: cfg.Addr, router: router, logger: cfg.Logger}, nil
}

func registerRoutes(g *gin.RouterGroup, h *handler.Handler) {
	g.POST("/actions/:name", func(c *gin.Context) {
		withBody(c, func(body []byte) (int, any) {
			return h.Action(c.Request.Context(), c.Param("name"), body)
		})
	})
	g.GET("/batches", func(c *gin.Context) {
		write(c)(h.ListBatches(c.Request.Context(), c.Query("status")))
	})
	g.POST("/batches", func(c *gin.Context) {
		withBody(c, func(body []byte) (int, any) {
			return h.CreateBatch(c.Request.Context(), body)
		})
	})
	g.PATCH("/batches/:id", func(c *gin.Context) {
		withBody(c, func(body []byte) (int, any) {
			return h.UpdateBatch(c.Request.Context(), c.Param("id"), body)
		})
	})
	g.POST("/batches/:id/approve", func(c *gin.Context) {
		withBody(c, func(body []byte) (int, any) {
			return h.ApproveBatch(c.Request.Context(), c.Param("id"), body)
		})
	})
	g.GET("/products", func(c *gin.Context) {
		write(c)(h.ListProducts(c.Request.Context()))
	})
	g.GET("/products/:id", func(c *gin.Context) {
		write(c)(h.GetProduct(c.Request.Context(), c.Param("id")))
	})
}

func withBody(c *gin.Context, fn func(body []byte) (int, any)) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large."})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read request body."})
		return
	}
	write(c)(fn(body))
}

func write(c *gin.Context) func(int, any) {
	return func(status int, body any) {
		c.JSON(status, body)
	}
}

// correlation echoes X-Correlation-Id or assigns a new one.
func correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := handler.ResolveCorrelationID(c.GetHeader(handler.CorrelationHeader))
		c.Set(correlationKey, id)
		c.Header(handler.CorrelationHeader, id)
		c.Next()
	}
}

func requestLogger(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		c.Next()
		l.InfoContext(c.Request.Context(), "http request",
			"correlation_id", c.GetString(correlationKey),
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("http server listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
