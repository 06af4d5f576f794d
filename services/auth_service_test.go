package services

import (
	"errors"
	"testing"

	"quizbox/models"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret)

	resp, err := svc.Register(&RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.Role != models.RoleUser {
		t.Errorf("registered role = %q, want %q", resp.User.Role, models.RoleUser)
	}
	if resp.Token == "" {
		t.Fatal("Register returned empty token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(resp.Token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Email != "alice@example.com" || claims.Role != models.RoleUser {
		t.Errorf("claims = %+v, want identity of registered user", claims)
	}

	// Plaintext password must not be stored.
	var stored models.User
	if err := db.First(&stored, resp.User.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.Password == "password123" {
		t.Error("password stored in plaintext")
	}

	login, err := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("login user ID = %d, want %d", login.User.ID, resp.User.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret)

	req := RegisterRequest{Email: "dup@example.com", Password: "password123", Name: "First"}
	if _, err := svc.Register(&req); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Register(&RegisterRequest{Email: "dup@example.com", Password: "other456", Name: "Second"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate register: err = %v, want ErrConflict", err)
	}
}

func TestLoginRejections(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret)

	if _, err := svc.Register(&RegisterRequest{
		Email:    "bob@example.com",
		Password: "password123",
		Name:     "Bob",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Login(&LoginRequest{Email: "bob@example.com", Password: "wrong"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong password: err = %v, want ErrUnauthorized", err)
	}

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "password123"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown email: err = %v, want ErrUnauthorized", err)
	}
}

func TestGetProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret)

	resp, err := svc.Register(&RegisterRequest{
		Email:    "carol@example.com",
		Password: "password123",
		Name:     "Carol",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	profile, err := svc.GetProfile(resp.User.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Email != "carol@example.com" || profile.Name != "Carol" {
		t.Errorf("profile = %+v", profile)
	}

	if _, err := svc.GetProfile(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user: err = %v, want ErrNotFound", err)
	}
}
