package helpers

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	AvatarFolder    = "avatars"
	PackageFolder   = "packages"
	TransportFolder = "transport"
)

// BookingRefPrefix starts every booking reference.
const BookingRefPrefix = "PH"

// NewBookingRef builds a human-readable booking reference:
// "PH" + YYMMDD + 4 random digits. Uniqueness is enforced by the store's
// index on the field; callers retry on duplicate key.
func NewBookingRef(now time.Time) string {
	return fmt.Sprintf("%s%s%04d", BookingRefPrefix, now.Format("060102"), rand.IntN(10000))
}

var bookingRefPattern = regexp.MustCompile(`^PH\d{10}$`)

// IsValidBookingRef reports whether s matches the booking reference format.
func IsValidBookingRef(s string) bool {
	return bookingRefPattern.MatchString(s)
}

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`\d`).MatchString(password)
	return hasLower && hasUpper && hasNumber
}

// GenerateSlug produces a URL-safe slug from a package name and destination.
func GenerateSlug(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, " "))
	joined = regexp.MustCompile(`[^a-z0-9]+`).ReplaceAllString(joined, "-")
	return strings.Trim(joined, "-")
}

// UploadImages pushes local or data-URI images to Cloudinary and returns the
// secure URLs alongside the public ids (needed for cleanup on failure).
func UploadImages(ctx context.Context, cld *cloudinary.Cloudinary, images []string, folder string) ([]string, []string, error) {
	var urls []string
	var publicIDs []string

	for i, img := range images {
		if strings.TrimSpace(img) == "" {
			continue
		}
		// Already-hosted URLs are kept as-is so partial updates don't re-upload.
		if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
			urls = append(urls, img)
			continue
		}
		res, err := cld.Upload.Upload(ctx, img, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{"packhorizon"},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to upload image %d: %v", i, err)
		}
		urls = append(urls, res.SecureURL)
		publicIDs = append(publicIDs, res.PublicID)
	}

	return urls, publicIDs, nil
}

// DeleteImages best-effort removes previously uploaded assets.
func DeleteImages(ctx context.Context, cld *cloudinary.Cloudinary, publicIDs []string) {
	for _, id := range publicIDs {
		_, _ = cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	}
}
