package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/internal/users"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail    map[string]*models.User
	created    []users.CreateUserDTO
	createErr  error
	lastLogins []uuid.UUID
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: map[string]*models.User{}}
}

func (s *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, dto)
	user := dto.ToModel()
	s.byEmail[dto.Email] = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, _ time.Time) error {
	s.lastLogins = append(s.lastLogins, id)
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T, repo userRepository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		JWTConfig:      config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
		PasswordConfig: testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestRegisterCreatesUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:       "Jamie",
		Email:      "  Jamie@Example.com ",
		Password:   "sup3r-secret",
		RePassword: "sup3r-secret",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.User.Email != "jamie@example.com" {
		t.Fatalf("expected normalized email, got %q", resp.User.Email)
	}
	if resp.User.Role != enums.RoleUser {
		t.Fatalf("expected default user role, got %s", resp.User.Role)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one create call, got %d", len(repo.created))
	}
	if repo.created[0].PasswordHash == "sup3r-secret" {
		t.Fatal("password must be hashed before persisting")
	}
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	svc := newTestService(t, newStubUserRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:       "Jamie",
		Email:      "jamie@example.com",
		Password:   "sup3r-secret",
		RePassword: "different",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubUserRepo()
	hash, err := security.HashPassword("sup3r-secret", testPasswordConfig())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{ID: uuid.New(), Email: "jamie@example.com", PasswordHash: hash, Role: enums.RoleUser}
	repo.byEmail[user.Email] = user

	svc := newTestService(t, repo)
	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Jamie@Example.com", Password: "sup3r-secret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if resp.User.ID != user.ID {
		t.Fatalf("unexpected user %s", resp.User.ID)
	}
	if len(repo.lastLogins) != 1 || repo.lastLogins[0] != user.ID {
		t.Fatalf("expected last login update for %s", user.ID)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	hash, err := security.HashPassword("sup3r-secret", testPasswordConfig())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo.byEmail["jamie@example.com"] = &models.User{ID: uuid.New(), Email: "jamie@example.com", PasswordHash: hash, Role: enums.RoleUser}

	svc := newTestService(t, repo)
	_, err = svc.Login(context.Background(), LoginRequest{Email: "jamie@example.com", Password: "wrong"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmailIsUnauthorized(t *testing.T) {
	svc := newTestService(t, newStubUserRepo())
	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
