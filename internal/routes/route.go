package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/packhorizon/server/internal/container"
	"github.com/packhorizon/server/internal/handlers"
	"github.com/packhorizon/server/internal/middleware"
	"github.com/packhorizon/server/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{c.Config.ClientOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(c.Metrics.Handler())
	r.Use(gin.Recovery())

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{
			"status":  "OK",
			"service": "packhorizon-api",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimit(c.RedisClient, c.Logger, middleware.RateGeneral))

	authRequired := middleware.AuthMiddleware(c.AuthService)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	agentOrAdmin := middleware.RequireRoles(models.RoleAgent, models.RoleAdmin)

	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(c.RedisClient, c.Logger, middleware.RateAuth))
	{
		auth.POST("/register", handlers.Register(c.AuthService))
		auth.POST("/login", handlers.Login(c.AuthService))
		auth.POST("/logout", handlers.Logout())
		auth.POST("/forgot-password", handlers.ForgotPassword(c.AuthService))
		auth.POST("/reset-password", handlers.ResetPassword(c.AuthService))
		auth.POST("/change-password", authRequired, handlers.ChangePassword(c.AuthService))
	}

	packages := api.Group("/packages")
	{
		packages.GET("", handlers.ListPackages(c.PackageService))
		packages.GET("/categories", handlers.ListCategories(c.PackageService))
		packages.GET("/destinations", handlers.ListDestinations(c.PackageService))
		packages.GET("/featured", handlers.ListFeatured(c.PackageService))
		packages.GET("/:id", handlers.GetPackage(c.PackageService))
		packages.GET("/:id/reviews", handlers.ListPackageReviews(c.ReviewService))

		packages.POST("", authRequired, agentOrAdmin,
			middleware.RateLimit(c.RedisClient, c.Logger, middleware.RateUpload),
			handlers.CreatePackage(c.PackageService))
		packages.PUT("/:id", authRequired, agentOrAdmin, handlers.UpdatePackage(c.PackageService))
		packages.DELETE("/:id", authRequired, adminOnly, handlers.DeletePackage(c.PackageService))
	}

	bookings := api.Group("/bookings")
	bookings.Use(authRequired)
	{
		bookings.POST("", handlers.CreateBooking(c.BookingService))
		bookings.GET("", handlers.ListMyBookings(c.BookingService))
		bookings.GET("/:id", handlers.GetBooking(c.BookingService))
		bookings.POST("/:id/cancel", handlers.CancelBooking(c.BookingService))
		bookings.POST("/:id/reviews", handlers.CreateReview(c.ReviewService))

		payment := bookings.Group("")
		payment.Use(middleware.RateLimit(c.RedisClient, c.Logger, middleware.RatePayment))
		{
			payment.POST("/:id/payment/order", handlers.CreatePaymentOrder(c.BookingService))
			payment.POST("/:id/payment/verify", handlers.VerifyPayment(c.BookingService))
		}
	}

	reviews := api.Group("/reviews")
	reviews.Use(authRequired)
	{
		reviews.POST("/:id/helpful", handlers.VoteHelpful(c.ReviewService))
		reviews.POST("/:id/report", handlers.ReportReview(c.ReviewService))
	}

	transport := api.Group("/transport-options")
	{
		transport.GET("", handlers.ListTransportOptions(c.TransportService))
		transport.GET("/:id", handlers.GetTransportOption(c.TransportService))
		transport.POST("", authRequired, agentOrAdmin, handlers.CreateTransportOption(c.TransportService))
		transport.PUT("/:id", authRequired, agentOrAdmin, handlers.UpdateTransportOption(c.TransportService))
		transport.DELETE("/:id", authRequired, adminOnly, handlers.DeactivateTransportOption(c.TransportService))
	}

	user := api.Group("/user")
	user.Use(authRequired)
	{
		user.GET("/profile", handlers.GetProfile())
		user.PUT("/profile", handlers.UpdateProfile(c.UserService))
	}

	admin := api.Group("/admin")
	admin.Use(authRequired, adminOnly, middleware.RateLimit(c.RedisClient, c.Logger, middleware.RateAdmin))
	{
		admin.GET("/stats", handlers.DashboardStats(c.AdminService))

		admin.GET("/users", handlers.ListUsers(c.UserService))
		admin.PUT("/users/:id/role", handlers.ChangeUserRole(c.UserService))
		admin.DELETE("/users/:id", handlers.DeactivateUser(c.UserService))

		admin.GET("/packages/pending", handlers.ListPendingPackages(c.PackageService))
		admin.POST("/packages/:id/approve", handlers.ApprovePackage(c.PackageService, true))
		admin.POST("/packages/:id/reject", handlers.ApprovePackage(c.PackageService, false))

		admin.GET("/bookings/pending", handlers.ListPendingBookings(c.BookingService))
		admin.POST("/bookings/:id/approve", handlers.ApproveBooking(c.BookingService, true))
		admin.POST("/bookings/:id/reject", handlers.ApproveBooking(c.BookingService, false))
		admin.POST("/bookings/:id/complete", handlers.CompleteBooking(c.BookingService))

		admin.POST("/reviews/:id/approve", handlers.ModerateReview(c.ReviewService, true))
		admin.POST("/reviews/:id/reject", handlers.ModerateReview(c.ReviewService, false))
	}

	return r
}
