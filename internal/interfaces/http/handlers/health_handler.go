package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports process liveness and database reachability
type HealthHandler struct {
	db      *gorm.DB
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// Health handles the liveness probe
// GET /
func (h *HealthHandler) Health(c *gin.Context) {
	dbStatus := "ok"
	if h.db != nil {
		if sqlDB, err := h.db.DB(); err != nil {
			dbStatus = "error"
		} else if err := sqlDB.Ping(); err != nil {
			dbStatus = "error"
		}
	} else {
		dbStatus = "not_configured"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "factura-scanner",
		"database": dbStatus,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}
