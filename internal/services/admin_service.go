package services

import (
	"context"

	"github.com/packhorizon/server/internal/models"
)

// DashboardStats is the admin overview snapshot.
type DashboardStats struct {
	Users    int64   `json:"users"`
	Packages int64   `json:"packages"`
	Bookings int64   `json:"bookings"`
	Reviews  int64   `json:"reviews"`
	Revenue  float64 `json:"revenue"`
}

type AdminService struct {
	userRepo    models.UserRepo
	packageRepo models.PackageRepo
	bookingRepo models.BookingRepo
	reviewRepo  models.ReviewRepo
}

func NewAdminService(userRepo models.UserRepo, packageRepo models.PackageRepo, bookingRepo models.BookingRepo, reviewRepo models.ReviewRepo) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		packageRepo: packageRepo,
		bookingRepo: bookingRepo,
		reviewRepo:  reviewRepo,
	}
}

func (as *AdminService) Stats(ctx context.Context) (*DashboardStats, error) {
	users, err := as.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	packages, err := as.packageRepo.CountPackages(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := as.bookingRepo.CountBookings(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := as.reviewRepo.CountReviews(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := as.bookingRepo.TotalRevenue(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Users:    users,
		Packages: packages,
		Bookings: bookings,
		Reviews:  reviews,
		Revenue:  revenue,
	}, nil
}
