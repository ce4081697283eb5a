package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/packhorizon/server/internal/middleware"
	"github.com/packhorizon/server/internal/models"
	"github.com/packhorizon/server/internal/services"
)

func Register(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		result, err := a.Register(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(result, "registered successfully"))
	}
}

func Login(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		result, err := a.Login(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(result, "login successful"))
	}
}

// Logout is stateless: tokens are not revoked server-side, the client
// discards its copy.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "logged out successfully"))
	}
}

func ChangePassword(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.AuthUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var in struct {
			CurrentPassword string `json:"current_password" binding:"required"`
			NewPassword     string `json:"new_password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := a.ChangePassword(c.Request.Context(), user, in.CurrentPassword, in.NewPassword); err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "password changed successfully"))
	}
}

func ForgotPassword(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		// Token delivery is the notification stub's problem; the response is
		// identical whether or not the email exists.
		if _, err := a.RequestPasswordReset(c.Request.Context(), in.Email); err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "if the email is registered, a reset link has been sent"))
	}
}

func ResetPassword(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Token       string `json:"token" binding:"required"`
			NewPassword string `json:"new_password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := a.ResetPassword(c.Request.Context(), in.Token, in.NewPassword); err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "password reset successfully"))
	}
}
