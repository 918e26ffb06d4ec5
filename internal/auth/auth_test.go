package auth

import (
	"errors"
	"strings"
	"testing"

	"taxbuddy-backend/internal/model"
)

func TestLoginAsGuest(t *testing.T) {
	svc := NewService()

	guest := svc.LoginAsGuest()
	if !guest.IsGuest {
		t.Errorf("IsGuest = false")
	}
	if !strings.HasPrefix(guest.ID, "guest_") {
		t.Errorf("guest ID = %s, want guest_ prefix", guest.ID)
	}
	if guest.Name != "Guest User" {
		t.Errorf("guest name = %s", guest.Name)
	}

	// 访客可以被再次查询
	got, err := svc.GetUser(guest.ID)
	if err != nil {
		t.Fatalf("GetUser(guest): %v", err)
	}
	if got.ID != guest.ID {
		t.Errorf("GetUser returned %s, want %s", got.ID, guest.ID)
	}

	other := svc.LoginAsGuest()
	if other.ID == guest.ID {
		t.Errorf("two guests share ID %s", guest.ID)
	}
}

func TestLoginByEmail(t *testing.T) {
	svc := NewService()

	user, err := svc.Login("john.taxpayer@example.com")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Name != "John Taxpayer" {
		t.Errorf("name = %s, want John Taxpayer", user.Name)
	}
	if user.FilingStatus != "single" {
		t.Errorf("filing status = %s, want single", user.FilingStatus)
	}

	if _, err := svc.Login("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown email err = %v, want ErrUserNotFound", err)
	}
}

func TestRegister(t *testing.T) {
	svc := NewService()

	user, err := svc.Register("New Person", "new.person@example.com", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.FilingStatus != "single" {
		t.Errorf("default filing status = %s, want single", user.FilingStatus)
	}

	if _, err := svc.Register("Dup", "john.taxpayer@example.com", "single"); !errors.Is(err, ErrEmailRegistered) {
		t.Errorf("duplicate email err = %v, want ErrEmailRegistered", err)
	}

	if _, err := svc.Login("new.person@example.com"); err != nil {
		t.Errorf("login after register: %v", err)
	}
}

func TestLoginAsUserType(t *testing.T) {
	svc := NewService()

	user, err := svc.LoginAsUserType("business_owner")
	if err != nil {
		t.Fatalf("LoginAsUserType: %v", err)
	}
	if user.Name != "Sarah Business" {
		t.Errorf("name = %s, want Sarah Business", user.Name)
	}

	if _, err := svc.LoginAsUserType("astronaut"); !errors.Is(err, ErrInvalidUserType) {
		t.Errorf("invalid type err = %v, want ErrInvalidUserType", err)
	}
}

func TestUpdatePreferences(t *testing.T) {
	svc := NewService()

	updated, err := svc.UpdatePreferences("user_001", model.Preferences{Theme: "dark", AutoSave: true})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if updated.Preferences.Theme != "dark" {
		t.Errorf("theme = %s, want dark", updated.Preferences.Theme)
	}

	if _, err := svc.UpdatePreferences("missing", model.Preferences{}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user err = %v, want ErrUserNotFound", err)
	}
}
