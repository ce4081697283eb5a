package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/packhorizon/server/internal/models"
	"github.com/packhorizon/server/internal/services"
)

func DashboardStats(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := a.Stats(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(stats, ""))
	}
}
