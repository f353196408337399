package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// LivenessText is the body of GET {base}/.
const LivenessText = "Stock-Exchange API service is up & running"

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

// HealthHandler provides liveness and readiness endpoints for the service.
//
// Responsibilities:
//   - {base}/: plain-text liveness, always 200.
//   - /healthz: JSON liveness probe, always 200.
//   - /readyz: readiness probe, 503 when any dependency check fails.
type HealthHandler struct {
	checks  map[string]PingFunc
	timeout time.Duration
}

// NewHealthHandler constructs a HealthHandler. checks maps a dependency name
// (e.g. "postgres", "redis") to its ping; nil entries are ignored.
func NewHealthHandler(checks map[string]PingFunc) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// Register mounts the probes on r. The plain-text liveness route lives under
// basePath, the JSON probes at the root.
func (h *HealthHandler) Register(r *gin.Engine, basePath string) {
	// Liveness
	// @Summary      Liveness check
	// @Description  Fixed plain-text body while the process is serving
	// @Tags         health
	// @Produce      plain
	// @Success      200  {string}  string  "Stock-Exchange API service is up & running"
	// @Router       / [get]
	r.GET(joinPath(basePath, "/"), h.Live)

	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// @Summary      Readiness probe
	// @Description  Returns ready if Postgres and Redis are reachable
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]any
	// @Failure      503  {object}  map[string]any
	// @Router       /readyz [get]
	r.GET("/readyz", h.Ready)
}

// Live writes the fixed liveness text regardless of headers or query.
func (h *HealthHandler) Live(c *gin.Context) {
	c.String(http.StatusOK, LivenessText)
}

// Ready runs every dependency check and reports each result.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if ping == nil {
			continue
		}
		if err := ping(ctx); err != nil {
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	if status != http.StatusOK {
		c.JSON(status, gin.H{"status": "degraded", "dependencies": deps})
		return
	}
	c.JSON(status, gin.H{"status": "ready", "dependencies": deps})
}

func joinPath(base, p string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return p
	}
	return base + p
}
