package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/packhorizon/server/internal/middleware"
	"github.com/packhorizon/server/internal/models"
	"github.com/packhorizon/server/internal/services"
)

func CreateBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.AuthUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var in services.CreateBookingInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		booking, err := b.CreateBooking(c.Request.Context(), user, in)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(booking, "booking created successfully"))
	}
}

func ListMyBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.AuthUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		page, limit, offset, ok := pagination(c)
		if !ok {
			return
		}

		bookings, total, err := b.ListMyBookings(c.Request.Context(), user.ID, offset, limit)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.PaginatedResponse(bookings, page, limit, total))
	}
}

func GetBooking(b *services.BookingService) gin.HandlerFunc {
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

		booking, err := b.GetBooking(c.Request.Context(), id, user)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(booking, ""))
	}
}

func CreatePaymentOrder(b *services.BookingService) gin.HandlerFunc {
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

		order, err := b.CreatePaymentOrder(c.Request.Context(), id, user)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(order, "payment order created"))
	}
}

func VerifyPayment(b *services.BookingService) gin.HandlerFunc {
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
			OrderID   string `json:"razorpay_order_id" binding:"required"`
			PaymentID string `json:"razorpay_payment_id" binding:"required"`
			Signature string `json:"razorpay_signature" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		booking, err := b.VerifyPayment(c.Request.Context(), id, user, in.OrderID, in.PaymentID, in.Signature)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(booking, "payment verified, booking confirmed"))
	}
}

func CancelBooking(b *services.BookingService) gin.HandlerFunc {
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

		booking, err := b.CancelBooking(c.Request.Context(), id, user, in.Reason)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(booking, "booking cancelled"))
	}
}

func ApproveBooking(b *services.BookingService, approve bool) gin.HandlerFunc {
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

		booking, err := b.SetApproval(c.Request.Context(), id, user, approve, in.Reason)
		if err != nil {
			fail(c, err)
			return
		}

		msg := "booking approved"
		if !approve {
			msg = "booking rejected"
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, msg))
	}
}

func CompleteBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		booking, err := b.CompleteBooking(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(booking, "booking completed"))
	}
}

func ListPendingBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset, ok := pagination(c)
		if !ok {
			return
		}

		bookings, total, err := b.ListPendingApproval(c.Request.Context(), offset, limit)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, models.PaginatedResponse(bookings, page, limit, total))
	}
}
