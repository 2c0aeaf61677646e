// Package server exposes the façade over HTTP.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feitianbubu/vidfacade"
)

// StartRequest is the body of POST /api/start-image2video
type StartRequest struct {
	Provider string `json:"provider"`
	ImageURL string `json:"image_url"`
	Text     string `json:"text"`
}

// TestCallRequest is the body of POST /api/heygen/test-call
type TestCallRequest struct {
	ImageURL string `json:"image_url"`
	Text     string `json:"text"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	StatusCode int    `json:"upstream_status,omitempty"`
}

// Server serves the façade's HTTP routes.
type Server struct {
	client *vidfacade.Client
	logger *zap.Logger
	engine *gin.Engine
}

// New creates a Server. A nil logger disables logging.
func New(client *vidfacade.Client, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{client: client, logger: logger, engine: gin.New()}
	s.engine.Use(gin.Recovery(), s.logRequests)

	api := s.engine.Group("/api")
	api.GET("/health", s.health)
	api.GET("/providers", s.providers)
	api.POST("/start-image2video", s.start)
	api.GET("/status/:provider/:task_id", s.status)
	api.POST("/heygen/test-call", s.heygenTestCall)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) logRequests(c *gin.Context) {
	c.Next()
	s.logger.Info("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()))
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) providers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": s.client.Providers()})
}

func (s *Server) start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, &vidfacade.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	result, err := s.client.Start(c.Request.Context(), req.Provider, req.ImageURL, req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) status(c *gin.Context) {
	result, err := s.client.Poll(c.Request.Context(), c.Param("provider"), c.Param("task_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) heygenTestCall(c *gin.Context) {
	var req TestCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, &vidfacade.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	result, err := s.client.Diagnose(c.Request.Context(), string(vidfacade.ProviderHeyGen), req.ImageURL, req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) fail(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, body)
}

// errorResponse maps the error kinds to HTTP statuses. Upstream statuses are
// passed through; transport failures become 502.
func errorResponse(err error) (int, ErrorResponse) {
	var (
		validationErr  *vidfacade.ValidationError
		unknownErr     *vidfacade.UnknownProviderError
		unavailableErr *vidfacade.ProviderUnavailableError
		configErr      *vidfacade.ConfigurationError
		upstreamErr    *vidfacade.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "validation_error"}
	case errors.As(err, &unknownErr):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "unknown_provider"}
	case errors.As(err, &unavailableErr):
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Kind: "provider_unavailable"}
	case errors.As(err, &configErr):
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Kind: "configuration_error"}
	case errors.As(err, &upstreamErr):
		status := upstreamErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return status, ErrorResponse{Error: upstreamErr.Message, Kind: "upstream_error", StatusCode: upstreamErr.StatusCode}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Kind: "internal_error"}
	}
}
