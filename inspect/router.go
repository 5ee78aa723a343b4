package inspect

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/di"
	"github.com/kbukum/modkit/errors"
	"github.com/kbukum/modkit/kernel"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/version"
)

// Source is what the inspect endpoints read. *kernel.Kernel implements it.
type Source interface {
	Name() string
	Modules() []kernel.Info
	Get(id string) (kernel.Info, bool)
	Container() di.Container
	Components() *component.Registry
}

var _ Source = (*kernel.Kernel)(nil)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Kernel     string             `json:"kernel"`
	Status     string             `json:"status"`
	Modules    int                `json:"modules"`
	Components []component.Health `json:"components"`
}

// NewRouter builds the gin engine serving:
//
//	GET /healthz        component health, 503 unless all healthy
//	GET /modules        loaded modules in load order
//	GET /modules/:id    one module, 404 MODULE_NOT_LOADED if absent
//	GET /bindings       every container binding
//	GET /version        build information
func NewRouter(src Source, log *logger.Logger) *gin.Engine {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(recovery(log), requestID(), requestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		health := src.Components().HealthAll(c.Request.Context())
		resp := HealthResponse{
			Kernel:     src.Name(),
			Status:     string(component.StatusHealthy),
			Modules:    len(src.Modules()),
			Components: health,
		}
		status := http.StatusOK
		for _, h := range health {
			if h.Status != component.StatusHealthy {
				resp.Status = string(component.StatusDegraded)
				status = http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(status, resp)
	})

	r.GET("/modules", func(c *gin.Context) {
		respondList(c, src.Modules())
	})

	r.GET("/modules/:id", func(c *gin.Context) {
		id := c.Param("id")
		info, ok := src.Get(id)
		if !ok {
			respondError(c, errors.ModuleNotLoaded(id))
			return
		}
		respondOK(c, info)
	})

	r.GET("/bindings", func(c *gin.Context) {
		respondList(c, src.Container().Registrations())
	})

	r.GET("/version", func(c *gin.Context) {
		respondOK(c, version.Get())
	})

	r.NoRoute(func(c *gin.Context) {
		respondError(c, errors.New("NOT_FOUND", "No such endpoint.", http.StatusNotFound))
	})

	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(logger.FieldRequestID, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := logger.Fields(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			logger.FieldStatus, c.Writer.Status(),
			logger.FieldDuration, time.Since(start).Milliseconds(),
			logger.FieldRequestID, c.GetString(logger.FieldRequestID),
		)
		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", fields)
		case c.Writer.Status() >= 400:
			log.Warn("request", fields)
		default:
			log.Debug("request", fields)
		}
	}
}

func recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered", logger.Fields(
			"path", c.Request.URL.Path,
			"panic", recovered,
		))
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			errors.New(errors.ErrCodeInternal, "An unexpected error occurred.", http.StatusInternalServerError).ToResponse())
	})
}
