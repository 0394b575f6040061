package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/types"
)

// bindToggle reads the {"id": ...} body shared by the add endpoints.
func bindToggle(c *gin.Context) (types.ToggleRequest, bool) {
	var req types.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return req, false
	}
	return req, true
}

func toggleAdded(c *gin.Context, log *zap.Logger, kind string, err error) {
	if err != nil {
		metrics.ToggleOperations.WithLabelValues(kind, "add", "error").Inc()
		respondError(c, log, err)
		return
	}
	metrics.ToggleOperations.WithLabelValues(kind, "add", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// toggleRemoved answers success whenever the relation ends up absent, so a
// repeated remove is a no-op. removed only feeds the metric.
func toggleRemoved(c *gin.Context, log *zap.Logger, kind string, removed bool, err error) {
	if err != nil {
		metrics.ToggleOperations.WithLabelValues(kind, "remove", "error").Inc()
		respondError(c, log, err)
		return
	}

	result := "ok"
	if !removed {
		result = "missing"
	}
	metrics.ToggleOperations.WithLabelValues(kind, "remove", result).Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
