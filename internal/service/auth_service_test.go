package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"medifind/internal/auth"
	"medifind/internal/repository"
)

func setupAuth(t *testing.T) (*AuthService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewAuthService(
		repository.NewMemoryPharmacies(store),
		repository.NewMemoryUsers(store),
		repository.NewMemorySettings(store),
		repository.NewMemoryTx(store),
		auth.NewManager("test-secret", "medifind-test", time.Hour),
	), store
}

func TestAuth_RegisterAndLoginPharmacy(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupAuth(t)

	res, err := svc.RegisterPharmacy(ctx, PharmacyRegistration{
		Name: "MediPlus", Email: "medi@plus.lk", Password: "secret123",
		Phone: "+94112223344", LicenseNumber: "LIC-1", Address: "Colombo, Sri Lanka",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Token == "" || res.UserID == "" || res.UserType != "pharmacy" {
		t.Fatalf("bad result: %+v", res)
	}

	login, err := svc.LoginPharmacy(ctx, "medi@plus.lk", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.UserID != res.UserID {
		t.Fatalf("ids differ")
	}

	if _, err := svc.LoginPharmacy(ctx, "medi@plus.lk", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected bad credentials, got %v", err)
	}
	if _, err := svc.LoginPharmacy(ctx, "nobody@plus.lk", "secret123"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected bad credentials for unknown email, got %v", err)
	}
}

func TestAuth_DuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupAuth(t)

	reg := PharmacyRegistration{Name: "MediPlus", Email: "dup@plus.lk", Password: "secret123"}
	if _, err := svc.RegisterPharmacy(ctx, reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.RegisterPharmacy(ctx, reg); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
}

func TestAuth_RegisterCreatesDefaultSettings(t *testing.T) {
	ctx := context.Background()
	svc, store := setupAuth(t)

	res, err := svc.RegisterPharmacy(ctx, PharmacyRegistration{Name: "MediPlus", Email: "m@p.lk", Password: "secret123"})
	if err != nil {
		t.Fatal(err)
	}
	settings := repository.NewMemorySettings(store)
	s, err := settings.Get(ctx, res.UserID)
	if err != nil {
		t.Fatalf("settings missing after register: %v", err)
	}
	if s.OpeningTime != "08:00" || s.ClosingTime != "20:00" {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestAuth_UserFlow(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupAuth(t)

	res, err := svc.RegisterUser(ctx, "John", "john@example.com", "secret123", "+123")
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	if res.UserType != "user" {
		t.Fatalf("wrong type: %q", res.UserType)
	}
	if _, err := svc.LoginUser(ctx, "john@example.com", "secret123"); err != nil {
		t.Fatalf("login user: %v", err)
	}
}

func TestAuth_ValidationShortPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupAuth(t)
	if _, err := svc.RegisterPharmacy(ctx, PharmacyRegistration{Name: "X", Email: "x@y.z", Password: "123"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
