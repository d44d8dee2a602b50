package auth_test

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/dgrijalva/jwt-go"

	"quizlive/internal/auth"
	"quizlive/internal/models"
	"quizlive/pkg/database"
)

var dbSeq atomic.Int64

func newTestService(t *testing.T) *auth.Service {
	t.Helper()
	dsn := fmt.Sprintf("file:authtest%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := database.NewSQLiteDB(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return auth.NewService(auth.NewRepository(db), "test-secret")
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	user := &models.User{Username: "host", Email: "host@example.com", Password: "correct horse"}
	if err := svc.Register(user); err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Password == "correct horse" {
		t.Fatal("password stored in plaintext")
	}

	token, err := svc.Login("host", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["username"] != "host" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Register(&models.User{Username: "host", Password: "password1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := svc.Register(&models.User{Username: "host", Password: "password2"})
	if !errors.Is(err, auth.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Register(&models.User{Username: "host", Password: "correct horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login("host", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login("nobody", "correct horse"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}
