package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/packhorizon/server/internal/helpers"
	"github.com/packhorizon/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func draftTransport() *models.TransportOption {
	dep := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	return &models.TransportOption{
		Name:      "Delhi Jaipur Express",
		Type:      models.TransportTrain,
		Operator:  "Indian Railways",
		BasePrice: 800,
		Routes: []models.TransportRoute{
			{Origin: "Delhi", Destination: "Jaipur", DurationMinutes: 270},
		},
		Schedules: []models.TransportSchedule{
			{DepartureTime: dep, ArrivalTime: dep.Add(270 * time.Minute), TotalSeats: 72, AvailableSeats: 72},
		},
	}
}

func TestCreateTransportOption(t *testing.T) {
	repo := newFakeTransportRepo()
	svc := NewTransportService(repo)
	agent := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}

	opt, err := svc.CreateTransportOption(context.Background(), draftTransport(), agent)
	if err != nil {
		t.Fatalf("CreateTransportOption failed: %v", err)
	}
	if !opt.IsActive {
		t.Error("new options should start active")
	}
	if opt.Currency != "INR" {
		t.Errorf("default currency = %q, want INR", opt.Currency)
	}
	if opt.CreatedBy != agent.ID {
		t.Error("creator not recorded")
	}
}

func TestCreateTransportOptionScheduleChecks(t *testing.T) {
	svc := NewTransportService(newFakeTransportRepo())
	agent := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}

	inverted := draftTransport()
	inverted.Schedules[0].ArrivalTime = inverted.Schedules[0].DepartureTime.Add(-time.Hour)
	if _, err := svc.CreateTransportOption(context.Background(), inverted, agent); helpers.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for arrival before departure, got %v", err)
	}

	overSeats := draftTransport()
	overSeats.Schedules[0].AvailableSeats = overSeats.Schedules[0].TotalSeats + 1
	if _, err := svc.CreateTransportOption(context.Background(), overSeats, agent); helpers.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for available > total seats, got %v", err)
	}

	badType := draftTransport()
	badType.Type = "teleporter"
	if _, err := svc.CreateTransportOption(context.Background(), badType, agent); helpers.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown transport type, got %v", err)
	}
}

func TestUpdateTransportOptionOwnership(t *testing.T) {
	repo := newFakeTransportRepo()
	svc := NewTransportService(repo)
	agent := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}

	opt, err := svc.CreateTransportOption(context.Background(), draftTransport(), agent)
	if err != nil {
		t.Fatalf("CreateTransportOption failed: %v", err)
	}

	other := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}
	_, err = svc.UpdateTransportOption(context.Background(), opt.ID, UpdateTransportInput{Name: strPtr("Hijacked")}, other)
	if helpers.StatusOf(err) != http.StatusForbidden {
		t.Errorf("expected 403 for another agent, got %v", err)
	}

	updated, err := svc.UpdateTransportOption(context.Background(), opt.ID, UpdateTransportInput{Name: strPtr("Jaipur Express")}, agent)
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Name != "Jaipur Express" {
		t.Errorf("name = %q after update", updated.Name)
	}
}

func TestUpdateTransportOptionRevalidatesSchedules(t *testing.T) {
	repo := newFakeTransportRepo()
	svc := NewTransportService(repo)
	agent := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}

	opt, err := svc.CreateTransportOption(context.Background(), draftTransport(), agent)
	if err != nil {
		t.Fatalf("CreateTransportOption failed: %v", err)
	}
	dep := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)

	inverted := UpdateTransportInput{Schedules: []models.TransportSchedule{
		{DepartureTime: dep, ArrivalTime: dep.Add(-time.Hour), TotalSeats: 72, AvailableSeats: 72},
	}}
	if _, err := svc.UpdateTransportOption(context.Background(), opt.ID, inverted, agent); helpers.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for arrival before departure, got %v", err)
	}

	overSeats := UpdateTransportInput{Schedules: []models.TransportSchedule{
		{DepartureTime: dep, ArrivalTime: dep.Add(4 * time.Hour), TotalSeats: 72, AvailableSeats: 73},
	}}
	if _, err := svc.UpdateTransportOption(context.Background(), opt.ID, overSeats, agent); helpers.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for available > total seats, got %v", err)
	}

	badType := UpdateTransportInput{Type: strPtr("teleporter")}
	if _, err := svc.UpdateTransportOption(context.Background(), opt.ID, badType, agent); helpers.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown transport type, got %v", err)
	}

	valid := UpdateTransportInput{Schedules: []models.TransportSchedule{
		{DepartureTime: dep, ArrivalTime: dep.Add(4 * time.Hour), TotalSeats: 80, AvailableSeats: 80},
	}}
	updated, err := svc.UpdateTransportOption(context.Background(), opt.ID, valid, agent)
	if err != nil {
		t.Fatalf("valid schedule update failed: %v", err)
	}
	if len(updated.Schedules) != 1 || updated.Schedules[0].TotalSeats != 80 {
		t.Errorf("schedules not replaced: %+v", updated.Schedules)
	}
}

func TestDeactivateTransportOption(t *testing.T) {
	repo := newFakeTransportRepo()
	svc := NewTransportService(repo)
	agent := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent}

	opt, err := svc.CreateTransportOption(context.Background(), draftTransport(), agent)
	if err != nil {
		t.Fatalf("CreateTransportOption failed: %v", err)
	}

	if err := svc.Deactivate(context.Background(), opt.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	options, total, err := svc.ListTransportOptions(context.Background(), models.TransportFilter{}, 0, 10)
	if err != nil {
		t.Fatalf("ListTransportOptions failed: %v", err)
	}
	if total != 0 || len(options) != 0 {
		t.Errorf("deactivated option still listed (%d results)", len(options))
	}

	if err := svc.Deactivate(context.Background(), primitive.NewObjectID()); helpers.StatusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown option, got %v", err)
	}
}
