package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/packhorizon/server/internal/helpers"
	"github.com/packhorizon/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fail maps a service error onto the taxonomy status and envelope.
func fail(c *gin.Context, err error) {
	c.JSON(helpers.StatusOf(err), models.ErrorResponse(helpers.MessageOf(err)))
}

// objectIDParam parses the :id route parameter.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid id format"))
		return primitive.NilObjectID, false
	}
	return id, true
}

// pagination reads offset-based page/pageSize query params.
func pagination(c *gin.Context) (page, limit, offset int, ok bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid page parameter"))
		return 0, 0, 0, false
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid limit parameter"))
		return 0, 0, 0, false
	}
	return page, limit, (page - 1) * limit, true
}
