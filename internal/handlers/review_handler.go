package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/packhorizon/server/internal/middleware"
	"github.com/packhorizon/server/internal/models"
	"github.com/packhorizon/server/internal/services"
)

func CreateReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.AuthUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var in services.CreateReviewInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		review, err := r.CreateReview(c.Request.Context(), user, in)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(review, "review submitted for moderation"))
	}
}

func ListPackageReviews(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		packageID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		page, limit, offset, ok := pagination(c)
		if !ok {
			return
		}

		reviews, total, err := r.ListPackageReviews(c.Request.Context(), packageID, offset, limit)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.PaginatedResponse(reviews, page, limit, total))
	}
}

func ModerateReview(r *services.ReviewService, approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		review, err := r.Moderate(c.Request.Context(), id, approve)
		if err != nil {
			fail(c, err)
			return
		}

		msg := "review approved"
		if !approve {
			msg = "review rejected"
		}
		c.JSON(http.StatusOK, models.SuccessResponse(review, msg))
	}
}

func VoteHelpful(r *services.ReviewService) gin.HandlerFunc {
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

		var in struct {
			Helpful *bool `json:"helpful" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := r.VoteHelpful(c.Request.Context(), id, user.ID, *in.Helpful); err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "vote recorded"))
	}
}

func ReportReview(r *services.ReviewService) gin.HandlerFunc {
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

		var in struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&in)

		if err := r.Report(c.Request.Context(), id, user.ID, in.Reason); err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "report recorded"))
	}
}
