package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"medifind/internal/repository"
)

func setupProfile(t *testing.T) (*ProfileService, string) {
	t.Helper()
	store := repository.NewMemoryStore()
	pharmacies := repository.NewMemoryPharmacies(store)
	p := repository.PharmacyRecord{Name: "MediPlus", Email: "m@p.lk", Address: "Colombo"}
	if err := pharmacies.Create(context.Background(), &p); err != nil {
		t.Fatal(err)
	}
	return NewProfileService(pharmacies, repository.NewMemorySettings(store), 1024), p.ID
}

func TestProfile_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	svc, id := setupProfile(t)

	got, err := svc.Update(ctx, id, ProfileUpdate{Phone: "+94112223344"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Phone != "+94112223344" {
		t.Fatalf("phone not set")
	}
	if got.Name != "MediPlus" || got.Address != "Colombo" {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}

func TestProfile_ImageValidation(t *testing.T) {
	svc, _ := setupProfile(t)

	if err := svc.ValidateImage("data:image/png;base64,iVBORw0KGgo="); err != nil {
		t.Fatalf("valid png rejected: %v", err)
	}
	if err := svc.ValidateImage("data:text/plain;base64,aGVsbG8="); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected unsupported image, got %v", err)
	}
	if err := svc.ValidateImage("data:image/gif;base64,R0lGOD=="); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	big := "data:image/png;base64," + strings.Repeat("A", 2048)
	if err := svc.ValidateImage(big); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}
}

func TestProfile_SettingsDefaultsAndUpdate(t *testing.T) {
	ctx := context.Background()
	svc, id := setupProfile(t)

	// no settings stored yet: defaults come back
	s, err := svc.GetSettings(ctx, id)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if s.OpeningTime != "08:00" {
		t.Fatalf("default opening time: %q", s.OpeningTime)
	}

	if err := svc.UpdateSettings(ctx, id, repository.SettingsRecord{SMSNotifications: true, OpeningTime: "09:00", ClosingTime: "21:00"}); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	s, _ = svc.GetSettings(ctx, id)
	if !s.SMSNotifications || s.OpeningTime != "09:00" {
		t.Fatalf("settings not saved: %+v", s)
	}
}
