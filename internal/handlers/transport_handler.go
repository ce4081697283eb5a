package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/packhorizon/server/internal/middleware"
	"github.com/packhorizon/server/internal/models"
	"github.com/packhorizon/server/internal/services"
)

func ListTransportOptions(t *services.TransportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset, ok := pagination(c)
		if !ok {
			return
		}

		filter := models.TransportFilter{
			Type:        c.Query("type"),
			Origin:      c.Query("origin"),
			Destination: c.Query("destination"),
		}

		options, total, err := t.ListTransportOptions(c.Request.Context(), filter, offset, limit)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.PaginatedResponse(options, page, limit, total))
	}
}

func GetTransportOption(t *services.TransportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		opt, err := t.GetTransportOption(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(opt, ""))
	}
}

func CreateTransportOption(t *services.TransportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.AuthUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var opt models.TransportOption
		if err := c.ShouldBindJSON(&opt); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := t.CreateTransportOption(c.Request.Context(), &opt, user)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created, "transport option created"))
	}
}

func UpdateTransportOption(t *services.TransportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.AuthUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		var in services.UpdateTransportInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		updated, err := t.UpdateTransportOption(c.Request.Context(), id, in, user)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(updated, "transport option updated"))
	}
}

func DeactivateTransportOption(t *services.TransportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		if err := t.Deactivate(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "transport option deactivated"))
	}
}
