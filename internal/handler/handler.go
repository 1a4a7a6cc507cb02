package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventsync/notification-service/internal/dispatcher"
	"github.com/eventsync/notification-service/internal/dto"
)

// TickRunner runs one dispatch tick.
type TickRunner interface {
	RunTick(ctx context.Context) (*dispatcher.Report, error)
}

// Pinger checks the backing store's health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	orchestrator TickRunner
	store        Pinger
	router       *gin.Engine
	log          *zap.Logger
}

func NewHandler(orchestrator TickRunner, store Pinger, log *zap.Logger) *Handler {
	h := &Handler{
		orchestrator: orchestrator,
		store:        store,
		router:       gin.Default(),
		log:          log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/dispatch", h.dispatch)
}

// healthCheck handles GET /health
func (h *Handler) healthCheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// dispatch handles POST /dispatch. It runs one tick and returns the
// aggregate report; per-candidate failures still yield a 200 since the
// tick itself completed.
func (h *Handler) dispatch(c *gin.Context) {
	report, err := h.orchestrator.RunTick(c.Request.Context())
	if err != nil {
		h.log.Error("Dispatch tick failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Success: false,
			Error:   "dispatch_failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.FromReport(report))
}
