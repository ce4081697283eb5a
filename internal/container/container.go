package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/packhorizon/server/internal/config"
	"github.com/packhorizon/server/internal/metrics"
	"github.com/packhorizon/server/internal/models"
	"github.com/packhorizon/server/internal/services"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies, built once at startup and
// passed by reference into route setup.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	MongoDBClient *mongo.Client
	RedisClient   *redis.Client

	AuthService      *services.AuthService
	UserService      *services.UserService
	PackageService   *services.PackageService
	BookingService   *services.BookingService
	ReviewService    *services.ReviewService
	TransportService *services.TransportService
	AdminService     *services.AdminService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	mongoClient *mongo.Client,
	redisClient *redis.Client,
	cld *cloudinary.Cloudinary,
	m *metrics.Metrics,
) *Container {
	repo := models.MongodbNewRepo(mongoClient.Database(cfg.MongoDBName))
	gateway := services.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	authService := services.NewAuthService(repo, []byte(cfg.JWTSecret), cfg.TokenTTL)
	userService := services.NewUserService(repo)
	packageService := services.NewPackageService(repo, cld)
	bookingService := services.NewBookingService(repo, repo, gateway, cfg.RazorpayKeySecret, m, logger)
	reviewService := services.NewReviewService(repo, repo, repo)
	transportService := services.NewTransportService(repo)
	adminService := services.NewAdminService(repo, repo, repo, repo)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Metrics:          m,
		MongoDBClient:    mongoClient,
		RedisClient:      redisClient,
		AuthService:      authService,
		UserService:      userService,
		PackageService:   packageService,
		BookingService:   bookingService,
		ReviewService:    reviewService,
		TransportService: transportService,
		AdminService:     adminService,
	}
}
