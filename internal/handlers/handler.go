package handlers

import (
	"time"

	"rover_control/internal/logger"
	"rover_control/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	interval time.Duration
}

// NewHandler constructs a new HTTP handler with dependencies.
// wsInterval is the default websocket push interval (0 uses one second).
func NewHandler(services *service.Service, log *logger.Logger, wsInterval time.Duration) *Handler {
	if wsInterval <= 0 || wsInterval > maxInterval {
		wsInterval = defaultInterval
	}
	return &Handler{services: services, log: log, interval: wsInterval}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Telemetry push and input channel on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerControlRoutes(api)
		h.registerTelemetryRoutes(api)
		api.POST("/analyze", h.analyze)
		api.POST("/actions/:name", h.performAction)
	}
}

func (h *Handler) registerControlRoutes(api *gin.RouterGroup) {
	control := api.Group("/control")
	{
		// Body example: {"source":"pointer","kind":"mousedown","direction":"left"}
		control.POST("/events", h.postEvent)
		// Body example: {"key":"ArrowUp","pressed":true}
		control.POST("/keys", h.postKey)
		control.GET("/state", h.getState)
	}
}

func (h *Handler) registerTelemetryRoutes(api *gin.RouterGroup) {
	api.GET("/telemetry", h.getTelemetry)
	api.GET("/logs", h.getLogs)
}
