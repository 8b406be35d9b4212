package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// HealthChecker is the database view needed by the health endpoint
type HealthChecker interface {
	Ping(ctx context.Context) error
	Stats() (persistence.ConnectionStats, error)
}

// HealthHandler reports service and database health
type HealthHandler struct {
	BaseHandler
	db      HealthChecker
	version string
	started time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db HealthChecker, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version, started: time.Now()}
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status   string                       `json:"status"`
	Version  string                       `json:"version,omitempty"`
	Uptime   string                       `json:"uptime"`
	Database string                       `json:"database"`
	Pool     *persistence.ConnectionStats `json:"pool,omitempty"`
}

// Health pings the database with a short deadline. An unreachable database
// answers 503 so load balancers stop routing to the instance.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Version:  h.version,
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Database: "ok",
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    resp,
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeUnavailable, Message: "Database is unreachable", RequestID: getRequestID(c)},
		})
		return
	}
	if stats, err := h.db.Stats(); err == nil {
		resp.Pool = &stats
	}
	h.Success(c, resp)
}
