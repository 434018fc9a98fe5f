package main

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T) (*Auth, *DB) {
	t.Helper()
	prev := bcryptCost
	bcryptCost = bcrypt.MinCost
	t.Cleanup(func() { bcryptCost = prev })

	db := openTestDB(t)
	auth, err := NewAuth(db)
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	return auth, db
}

func TestRegisterLoginValidate(t *testing.T) {
	auth, _ := newTestAuth(t)

	id, token, err := auth.Register("ace", "secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id <= 0 || token == "" {
		t.Fatalf("expected id and token, got %d %q", id, token)
	}

	gotID, name, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if gotID != id || name != "ace" {
		t.Errorf("expected %d/ace, got %d/%s", id, gotID, name)
	}

	loginID, _, err := auth.Login("ace", "secret", "10.0.0.1")
	if err != nil || loginID != id {
		t.Errorf("expected login as %d, got %d %v", id, loginID, err)
	}
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newTestAuth(t)

	tests := []struct {
		user, pass string
		want       error
	}{
		{"a", "secret", ErrBadUsername},
		{"this-name-is-far-too-long", "secret", ErrBadUsername},
		{"ace", "abc", ErrBadPassword},
	}
	for _, tt := range tests {
		if _, _, err := auth.Register(tt.user, tt.pass); !errors.Is(err, tt.want) {
			t.Errorf("Register(%q, %q) = %v, want %v", tt.user, tt.pass, err, tt.want)
		}
	}

	auth.Register("ace", "secret")
	if _, _, err := auth.Register("ace", "other!"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	auth, _ := newTestAuth(t)
	auth.Register("ace", "secret")

	if _, _, err := auth.Login("ace", "wrong", "10.0.0.1"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials, got %v", err)
	}
	if _, _, err := auth.Login("ghost", "secret", "10.0.0.1"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials for unknown user, got %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	auth, _ := newTestAuth(t)
	auth.Register("ace", "secret")

	for i := 0; i < maxLoginAttempts; i++ {
		auth.Login("ace", "wrong", "10.0.0.2")
	}
	if _, _, err := auth.Login("ace", "secret", "10.0.0.2"); !errors.Is(err, ErrTooManyAttempts) {
		t.Errorf("expected ErrTooManyAttempts, got %v", err)
	}
	// other addresses are unaffected
	if _, _, err := auth.Login("ace", "secret", "10.0.0.3"); err != nil {
		t.Errorf("expected login from a fresh address, got %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	auth, _ := newTestAuth(t)
	if _, _, err := auth.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSecretSurvivesRestart(t *testing.T) {
	auth, db := newTestAuth(t)
	_, token, _ := auth.Register("ace", "secret")

	again, err := NewAuth(db)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := again.ValidateToken(token); err != nil {
		t.Errorf("token should stay valid across restarts, got %v", err)
	}
}
