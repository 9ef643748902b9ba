package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mikey/llm-phishing-detector/internal/config"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"go.uber.org/zap"
)

// DetectionService is the part of the detection service exposed over HTTP
type DetectionService interface {
	AnalyzeEmail(ctx context.Context, req *core.AnalysisRequest) (*core.AnalysisResponse, error)
	CheckURL(ctx context.Context, rawURL string) (*core.ThreatCheckResult, error)
}

// HTTPServer serves the phishing detection API
type HTTPServer struct {
	echo    *echo.Echo
	service DetectionService
	cfg     config.ServerConfig
	logger  *zap.Logger
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// NewHTTPServer creates the API server. metricsHandler may be nil.
func NewHTTPServer(
	service DetectionService,
	metricsHandler http.Handler,
	cfg config.ServerConfig,
	logger *zap.Logger,
) *HTTPServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	s := &HTTPServer{
		echo:    e,
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
	e.HTTPErrorHandler = s.handleError

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Warn("Request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("Request", fields...)
			return nil
		},
	}))
	if len(cfg.CORSAllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType},
			AllowCredentials: false,
		}))
	}
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	// Routes
	e.GET("/", s.root)
	e.GET("/health", s.healthCheck)
	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}
	e.POST("/check-url/", s.checkURL)
	e.POST("/check-url", s.checkURL)
	e.POST("/api/analyze", s.analyze)

	return s
}

func (s *HTTPServer) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Phishing Detection API is running!",
	})
}

func (s *HTTPServer) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "phishing-detector",
	})
}

// Start listens on the configured address until Shutdown is called
func (s *HTTPServer) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.cfg.ListenAddress))
	if err := s.echo.Start(s.cfg.ListenAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// ServeHTTP lets the server be used as an http.Handler
func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
