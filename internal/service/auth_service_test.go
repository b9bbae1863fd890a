package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"team-request-service/internal/models"
)

const testSecret = "test-secret"

func newTestAuthService(s *memStore) *AuthService {
	svc, err := NewAuthService(fakeTx{}, s, s, testSecret, time.Hour, testLogger())
	if err != nil {
		panic(err)
	}
	return svc
}

func TestAuthService_Register(t *testing.T) {
	store := newMemStore()
	svc := newTestAuthService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Error("expected generated user id")
	}
	if len(user.Roles) != 1 || user.Roles[0] != models.RolePlayer {
		t.Errorf("expected player role, got %v", user.Roles)
	}
	creds := store.creds["alice"]
	if creds == nil {
		t.Fatal("expected credentials stored")
	}
	if creds.PasswordHash == "secret1" {
		t.Error("password must not be stored in plaintext")
	}

	if _, err := svc.Register(ctx, "alice", "other@example.com", "secret1"); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate username: expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newTestAuthService(newMemStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "a@example.com", "secret1"); !errors.Is(err, ErrAuthValidation) {
		t.Errorf("empty username: expected ErrAuthValidation, got %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "a@example.com", "short"); !errors.Is(err, ErrAuthValidation) {
		t.Errorf("short password: expected ErrAuthValidation, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	store := newMemStore()
	svc := newTestAuthService(store)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := svc.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != registered.ID {
		t.Errorf("expected sub %s, got %v", registered.ID, claims["sub"])
	}
	if claims["username"] != "alice" {
		t.Errorf("expected username alice, got %v", claims["username"])
	}

	if _, err := svc.Login(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}
