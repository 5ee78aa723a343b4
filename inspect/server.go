package inspect

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/logger"
)

const componentName = "inspect-server"

var (
	_ component.Component   = (*Server)(nil)
	_ component.Describable = (*Server)(nil)
)

// Server serves the inspect router over HTTP/1.1 and h2c. It is a
// component, so registering it with a kernel ties it to the app lifecycle.
type Server struct {
	cfg        Config
	engine     *gin.Engine
	httpServer *http.Server
	log        *logger.Logger

	mu      sync.RWMutex
	addr    string
	running bool
}

// NewServer creates a server for src. cfg should have defaults applied.
func NewServer(cfg Config, src Source, log *logger.Logger) *Server {
	log = log.WithComponent("inspect")
	engine := NewRouter(src, log)

	h2s := &http2.Server{
		MaxConcurrentStreams: 100,
		IdleTimeout:          time.Duration(cfg.IdleTimeout) * time.Second,
	}

	return &Server{
		cfg:    cfg,
		engine: engine,
		log:    log,
		addr:   cfg.Addr(),
		httpServer: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      h2c.NewHandler(engine, h2s),
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
	}
}

// Engine returns the gin engine for extra routes.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Name returns the component name.
func (s *Server) Name() string { return componentName }

// Start binds the listener and serves in a goroutine. It returns once the
// port is bound.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("inspect server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.running = true
	s.mu.Unlock()

	go func() {
		err := s.httpServer.Serve(listener)
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.log.Error("inspect server error", logger.Fields(logger.FieldError, err.Error()))
		}
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.log.Info("inspect server started", logger.Fields("addr", s.Addr()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("inspect server shutdown: %w", err)
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.log.Info("inspect server stopped")
	return nil
}

// Health reports unhealthy until Start succeeded and after Stop.
func (s *Server) Health(ctx context.Context) component.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not serving"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

// Describe returns the startup summary line.
func (s *Server) Describe() component.Description {
	return component.Description{
		Name:    "Inspect Server",
		Type:    "server",
		Details: "http://" + s.Addr(),
	}
}
