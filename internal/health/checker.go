package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mediadeck/crm/backend/internal/database"
	"github.com/sirupsen/logrus"
)

// HealthChecker probes the backing services the search pipeline depends on.
type HealthChecker struct {
	dbManager *database.Manager
	logger    *logrus.Logger
	started   time.Time
}

func NewHealthChecker(dbManager *database.Manager, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		dbManager: dbManager,
		logger:    logger,
		started:   time.Now(),
	}
}

// ServiceHealth represents the health status of one backing service.
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health.
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

// CheckPostgreSQL pings the database.
func (h *HealthChecker) CheckPostgreSQL() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingDatabase()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("PostgreSQL health check failed")
	}

	return ServiceHealth{
		Name:         "postgresql",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckRedis pings the cache.
func (h *HealthChecker) CheckRedis() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingRedis()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("Redis health check failed")
	}

	return ServiceHealth{
		Name:         "redis",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll runs every probe and aggregates the result.
func (h *HealthChecker) CheckAll() OverallHealth {
	services := []ServiceHealth{
		h.CheckPostgreSQL(),
		h.CheckRedis(),
	}

	status := "healthy"
	for _, s := range services {
		if s.Status != "healthy" {
			status = "degraded"
			break
		}
	}

	return OverallHealth{
		Status:   status,
		Services: services,
		Uptime:   time.Since(h.started).Round(time.Second).String(),
	}
}

// Handler serves GET /health.
func (h *HealthChecker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		overall := h.CheckAll()
		code := http.StatusOK
		if overall.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, overall)
	}
}
