package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/packhorizon/server/internal/middleware"
	"github.com/packhorizon/server/internal/models"
	"github.com/packhorizon/server/internal/services"
)

func packageFilterFromQuery(c *gin.Context) models.PackageFilter {
	minPrice, _ := strconv.ParseFloat(c.Query("min_price"), 64)
	maxPrice, _ := strconv.ParseFloat(c.Query("max_price"), 64)
	maxDuration, _ := strconv.Atoi(c.Query("max_duration"))

	return models.PackageFilter{
		Category:    c.Query("category"),
		Destination: c.Query("destination"),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		MaxDuration: maxDuration,
		Search:      c.Query("search"),
		SortBy:      c.Query("sort"),
		SortDesc:    c.DefaultQuery("order", "asc") == "desc",
	}
}

func ListPackages(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset, ok := pagination(c)
		if !ok {
			return
		}

		packages, total, err := p.ListPackages(c.Request.Context(), packageFilterFromQuery(c), offset, limit)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.PaginatedResponse(packages, page, limit, total))
	}
}

func GetPackage(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		pkg, err := p.GetPackage(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(pkg, ""))
	}
}

func CreatePackage(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.AuthUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var pkg models.Package
		if err := c.ShouldBindJSON(&pkg); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := p.CreatePackage(c.Request.Context(), &pkg, user)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created, "package created successfully"))
	}
}

func UpdatePackage(p *services.PackageService) gin.HandlerFunc {
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

		var in services.UpdatePackageInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		updated, err := p.UpdatePackage(c.Request.Context(), id, in, user)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(updated, "package updated successfully"))
	}
}

func DeletePackage(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		if err := p.DeletePackage(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "package deleted successfully"))
	}
}

func ApprovePackage(p *services.PackageService, approve bool) gin.HandlerFunc {
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

		pkg, err := p.SetApproval(c.Request.Context(), id, approve, user)
		if err != nil {
			fail(c, err)
			return
		}

		msg := "package approved"
		if !approve {
			msg = "package rejected"
		}
		c.JSON(http.StatusOK, models.SuccessResponse(pkg, msg))
	}
}

func ListPendingPackages(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset, ok := pagination(c)
		if !ok {
			return
		}

		packages, total, err := p.ListPendingApproval(c.Request.Context(), offset, limit)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.PaginatedResponse(packages, page, limit, total))
	}
}

func ListCategories(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := p.ListCategories(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(categories, ""))
	}
}

func ListDestinations(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		destinations, err := p.ListDestinations(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(destinations, ""))
	}
}

func ListFeatured(p *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		packages, err := p.ListFeatured(c.Request.Context(), limit)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(packages, ""))
	}
}
