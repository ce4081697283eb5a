package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/packhorizon/server/internal/helpers"
	"github.com/packhorizon/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPackageFixture() (*PackageService, *fakePackageRepo) {
	repo := newFakePackageRepo()
	return NewPackageService(repo, nil), repo
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func draftPackage() *models.Package {
	return &models.Package{
		Name:         "Kerala Backwaters",
		Description:  "Houseboat cruise through the Alleppey backwaters",
		Destination:  models.Destination{Country: "India", City: "Alleppey"},
		DurationDays: 4,
		Pricing:      models.PackagePricing{BasePrice: 15000},
		Availability: models.Availability{TotalSlots: 20},
		Category:     "nature",
	}
}

func TestCreatePackageByAgentAwaitsApproval(t *testing.T) {
	svc, _ := newPackageFixture()
	agent := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}

	pkg, err := svc.CreatePackage(context.Background(), draftPackage(), agent)
	if err != nil {
		t.Fatalf("CreatePackage failed: %v", err)
	}

	if pkg.IsApproved {
		t.Error("agent-created packages must await approval")
	}
	if !pkg.Availability.IsActive {
		t.Error("new packages should start active")
	}
	if pkg.Availability.BookedSlots != 0 {
		t.Error("new packages should start with zero booked slots")
	}
	if pkg.Slug != "kerala-backwaters-alleppey" {
		t.Errorf("slug = %q", pkg.Slug)
	}
	if pkg.Pricing.Currency != "INR" {
		t.Errorf("default currency = %q, want INR", pkg.Pricing.Currency)
	}
	if pkg.CreatedBy != agent.ID {
		t.Error("creator not recorded")
	}
}

func TestCreatePackageByAdminSkipsQueue(t *testing.T) {
	svc, _ := newPackageFixture()
	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	pkg, err := svc.CreatePackage(context.Background(), draftPackage(), admin)
	if err != nil {
		t.Fatalf("CreatePackage failed: %v", err)
	}
	if !pkg.IsApproved {
		t.Error("admin-created packages should be approved immediately")
	}
	if pkg.ApprovedBy == nil || *pkg.ApprovedBy != admin.ID {
		t.Error("approver not recorded")
	}
}

func TestCreatePackageValidation(t *testing.T) {
	svc, _ := newPackageFixture()
	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	noName := draftPackage()
	noName.Name = ""
	if _, err := svc.CreatePackage(context.Background(), noName, admin); helpers.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for a nameless package, got %v", err)
	}

	noSlots := draftPackage()
	noSlots.Availability.TotalSlots = 0
	if _, err := svc.CreatePackage(context.Background(), noSlots, admin); helpers.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for zero slots, got %v", err)
	}
}

func TestUpdatePackageOwnership(t *testing.T) {
	svc, _ := newPackageFixture()
	agent := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}

	pkg, err := svc.CreatePackage(context.Background(), draftPackage(), agent)
	if err != nil {
		t.Fatalf("CreatePackage failed: %v", err)
	}

	otherAgent := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}
	_, err = svc.UpdatePackage(context.Background(), pkg.ID, UpdatePackageInput{Name: strPtr("Hijacked")}, otherAgent)
	if helpers.StatusOf(err) != http.StatusForbidden {
		t.Errorf("expected 403 for another agent, got %v", err)
	}

	updated, err := svc.UpdatePackage(context.Background(), pkg.ID, UpdatePackageInput{Name: strPtr("Kerala Deluxe")}, agent)
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Name != "Kerala Deluxe" {
		t.Errorf("name = %q after update", updated.Name)
	}

	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	if _, err := svc.UpdatePackage(context.Background(), pkg.ID, UpdatePackageInput{Description: strPtr("Refreshed")}, admin); err != nil {
		t.Errorf("admin update failed: %v", err)
	}
}

func TestUpdatePackageIgnoresAvailabilityPayload(t *testing.T) {
	svc, repo := newPackageFixture()
	agent := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}

	pkg, err := svc.CreatePackage(context.Background(), draftPackage(), agent)
	if err != nil {
		t.Fatalf("CreatePackage failed: %v", err)
	}
	repo.packages[pkg.ID].IsApproved = true
	repo.packages[pkg.ID].Availability.BookedSlots = 5

	// A request body carrying the whole availability subdocument and approval
	// flags must not reach the stored package.
	body := `{"availability": {"booked_slots": 0, "total_slots": 1, "is_active": true}, "is_approved": false, "rating": {"average": 5, "count": 100}}`
	var in UpdatePackageInput
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	_, err = svc.UpdatePackage(context.Background(), pkg.ID, in, agent)
	if helpers.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 when nothing updatable is sent, got %v", err)
	}

	stored := repo.packages[pkg.ID]
	if stored.Availability.BookedSlots != 5 {
		t.Errorf("booked slots = %d, want 5", stored.Availability.BookedSlots)
	}
	if stored.Availability.TotalSlots != 20 {
		t.Errorf("total slots = %d, want 20", stored.Availability.TotalSlots)
	}
	if !stored.IsApproved {
		t.Error("approval flag must not be reachable from an update body")
	}
}

func TestUpdatePackageTotalSlotsGuard(t *testing.T) {
	svc, repo := newPackageFixture()
	agent := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}

	pkg, err := svc.CreatePackage(context.Background(), draftPackage(), agent)
	if err != nil {
		t.Fatalf("CreatePackage failed: %v", err)
	}
	repo.packages[pkg.ID].Availability.BookedSlots = 5

	_, err = svc.UpdatePackage(context.Background(), pkg.ID, UpdatePackageInput{TotalSlots: intPtr(3)}, agent)
	if helpers.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 when capacity drops below booked slots, got %v", err)
	}

	updated, err := svc.UpdatePackage(context.Background(), pkg.ID, UpdatePackageInput{TotalSlots: intPtr(30)}, agent)
	if err != nil {
		t.Fatalf("raising capacity failed: %v", err)
	}
	if updated.Availability.TotalSlots != 30 {
		t.Errorf("total slots = %d, want 30", updated.Availability.TotalSlots)
	}
	if updated.Availability.BookedSlots != 5 {
		t.Errorf("booked slots = %d, want 5", updated.Availability.BookedSlots)
	}
}

func TestSetApprovalGuards(t *testing.T) {
	svc, _ := newPackageFixture()
	agent := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}
	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	pkg, err := svc.CreatePackage(context.Background(), draftPackage(), agent)
	if err != nil {
		t.Fatalf("CreatePackage failed: %v", err)
	}

	approved, err := svc.SetApproval(context.Background(), pkg.ID, true, admin)
	if err != nil {
		t.Fatalf("SetApproval failed: %v", err)
	}
	if !approved.IsApproved {
		t.Error("package not approved")
	}

	_, err = svc.SetApproval(context.Background(), pkg.ID, true, admin)
	if helpers.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 on repeated approval, got %v", err)
	}

	// Rejection after approval is a real transition.
	rejected, err := svc.SetApproval(context.Background(), pkg.ID, false, admin)
	if err != nil {
		t.Fatalf("rejecting an approved package failed: %v", err)
	}
	if rejected.IsApproved {
		t.Error("package still approved after rejection")
	}
}

func TestSetApprovalUnknownPackage(t *testing.T) {
	svc, _ := newPackageFixture()
	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	_, err := svc.SetApproval(context.Background(), primitive.NewObjectID(), true, admin)
	if helpers.StatusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
