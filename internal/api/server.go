// Package api exposes the orchestration engine over HTTP
package api

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/infrax/infra-engine/internal/advisor"
	"github.com/infrax/infra-engine/internal/orchestrator"
	"github.com/infrax/infra-engine/internal/repository"
	"github.com/infrax/infra-engine/internal/types"
)

// Server is the HTTP front end over the orchestrator, store and advisor
type Server struct {
	orchestrator *orchestrator.Orchestrator
	store        repository.Store
	advisor      *advisor.Advisor
	router       *gin.Engine
}

// New creates a server and wires its routes
func New(o *orchestrator.Orchestrator, store repository.Store, adv *advisor.Advisor, corsOrigins []string) *Server {
	s := &Server{
		orchestrator: o,
		store:        store,
		advisor:      adv,
	}
	s.setupRouter(corsOrigins)
	return s
}

func (s *Server) setupRouter(corsOrigins []string) {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger())

	if len(corsOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = corsOrigins
		corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
		s.router.Use(cors.New(corsConfig))
	}

	s.router.GET("/health", s.healthHandler)

	api := s.router.Group("/api/v1")
	{
		api.POST("/workflows/intelligent", s.runWorkflowHandler)
		api.GET("/workflows", s.listWorkflowsHandler)
		api.GET("/workflows/:id", s.getWorkflowHandler)

		api.GET("/workflows/:id/code", s.getCodeHandler)
		api.POST("/workflows/:id/code", s.appendCodeVersionHandler)
		api.GET("/workflows/:id/code/versions", s.listCodeVersionsHandler)
		api.GET("/workflows/:id/code/versions/:version", s.getCodeVersionHandler)

		api.POST("/workflows/:id/cost/forecast", s.forecastHandler)
		api.POST("/workflows/:id/cost/explain", s.explainCostHandler)

		api.POST("/workflows/:id/advisor/chat", s.advisorChatHandler)
		api.POST("/advisor/validate", s.advisorValidateHandler)
		api.POST("/advisor/scan", s.advisorScanHandler)
		api.POST("/advisor/query", s.advisorQueryHandler)
	}
}

// Run starts the server on the given port
func (s *Server) Run(port string) error {
	log.WithField("port", port).Info("Starting engine server")
	return s.router.Run(":" + port)
}

// Router exposes the handler for httptest
func (s *Server) Router() http.Handler {
	return s.router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("Request handled")
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	if s.store != nil {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// respondError maps domain errors onto HTTP statuses: bad request shape
// and bad parameters → 422, missing rows → 404, upstream failures →
// 502/504, anything else → 500.
func respondError(c *gin.Context, err error) {
	var validationErr *types.ValidationError
	var paramsErr *types.InvalidCostParametersError
	var upstreamErr *types.UpstreamError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &paramsErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrWorkflowNotFound), errors.Is(err, repository.ErrVersionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &upstreamErr):
		status := http.StatusBadGateway
		if upstreamErr.Timeout {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
