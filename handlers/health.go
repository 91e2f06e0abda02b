// File: handlers/health.go
package handlers

import (
	"net/http"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles GET /health: liveness plus the latest mongo/redis
// probe results from the background monitor.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()

	code := http.StatusOK
	if !status.Mongo || !status.Redis {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, utils.APIResponse{
		Success: code == http.StatusOK,
		Message: "health",
		Data:    status,
	})
}
