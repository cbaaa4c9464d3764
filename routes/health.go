package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GET /health answers 200 either way; the body says whether the store is reachable.
func (d *deps) health(c *gin.Context) {
	n, err := d.events.Count(c.Request.Context())
	if err != nil {
		d.log.Warn("health check degraded", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "total_events": n})
}
