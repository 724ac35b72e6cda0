package services

import (
	"errors"
	"testing"

	"github.com/diewo77/foodshare/internal/models"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	u, err := svc.Register(RegisterInput{
		Username: "alice",
		Email:    "alice@test.local",
		Password: "secret",
		Role:     models.RoleDonor,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(u.UniqueID) != 10 {
		t.Fatalf("expected 10-digit unique id, got %q", u.UniqueID)
	}
	if u.Password == "secret" {
		t.Fatal("password stored in plain text")
	}

	// By username.
	if _, err := svc.Authenticate("alice", "secret", models.RoleDonor); err != nil {
		t.Fatalf("authenticate by username: %v", err)
	}
	// By unique id.
	if _, err := svc.Authenticate(u.UniqueID, "secret", models.RoleDonor); err != nil {
		t.Fatalf("authenticate by unique id: %v", err)
	}
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	if _, err := svc.Register(RegisterInput{Username: "alice", Email: "alice@test.local", Password: "secret", Role: models.RoleDonor}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name     string
		login    string
		password string
		role     models.Role
	}{
		{"wrong password", "alice", "nope", models.RoleDonor},
		{"wrong role", "alice", "secret", models.RoleReceiver},
		{"unknown user", "bob", "secret", models.RoleDonor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Authenticate(tc.login, tc.password, tc.role); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	if _, err := svc.Register(RegisterInput{Username: "alice", Email: "alice@test.local", Password: "x", Role: models.RoleDonor}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Register(RegisterInput{Username: "alice", Email: "other@test.local", Password: "x", Role: models.RoleDonor}); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	if _, err := svc.Register(RegisterInput{Username: "bob", Email: "alice@test.local", Password: "x", Role: models.RoleDonor}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// Failed registrations must not leave partial records behind.
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}

func TestExists(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	u, err := svc.Register(RegisterInput{Username: "alice", Email: "alice@test.local", Password: "x", Role: models.RoleDonor})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !svc.Exists(u.ID, models.RoleDonor) {
		t.Fatal("expected user to exist with its role")
	}
	if svc.Exists(u.ID, models.RoleAdmin) {
		t.Fatal("role mismatch must not verify")
	}
	if svc.Exists(999, models.RoleDonor) {
		t.Fatal("unknown id must not verify")
	}
}
