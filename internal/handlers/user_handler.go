package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/packhorizon/server/internal/middleware"
	"github.com/packhorizon/server/internal/models"
	"github.com/packhorizon/server/internal/services"
)

func GetProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.AuthUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, ""))
	}
}

func UpdateProfile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.AuthUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var in services.UpdateProfileInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		updated, err := u.UpdateProfile(c.Request.Context(), user.ID, in)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(updated, "profile updated successfully"))
	}
}

func ListUsers(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset, ok := pagination(c)
		if !ok {
			return
		}

		users, total, err := u.ListUsers(c.Request.Context(), c.Query("role"), offset, limit)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.PaginatedResponse(users, page, limit, total))
	}
}

func DeactivateUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		if err := u.DeactivateUser(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "user deactivated"))
	}
}

func ChangeUserRole(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		var in struct {
			Role string `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := u.ChangeUserRole(c.Request.Context(), id, in.Role); err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "role updated"))
	}
}
