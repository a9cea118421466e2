package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authsvc "github.com/storefrontlabs/storefront-backend/internal/auth"
	cartsvc "github.com/storefrontlabs/storefront-backend/internal/cart"
	checkoutsvc "github.com/storefrontlabs/storefront-backend/internal/checkout"
	productsvc "github.com/storefrontlabs/storefront-backend/internal/products"
	pkgauth "github.com/storefrontlabs/storefront-backend/pkg/auth"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Register(context.Context, authsvc.RegisterRequest) (*authsvc.RegisterResponse, error) {
	return &authsvc.RegisterResponse{}, nil
}

func (stubAuthService) Login(context.Context, authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return &authsvc.LoginResponse{}, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Execute(context.Context, uuid.UUID) (*checkoutsvc.Result, error) {
	return &checkoutsvc.Result{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "storefront-test",
			ExpirationMinutes: 60,
		},
	}
}

func newProductService(t *testing.T) *productsvc.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ddl := `
CREATE TABLE IF NOT EXISTS product (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := db.Exec(ddl).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	svc, err := productsvc.NewService(productsvc.NewRepository(db))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func newCartService(t *testing.T) *cartsvc.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s-cart?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ddl := []string{`
CREATE TABLE IF NOT EXISTS product (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_id)
);`}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	svc, err := cartsvc.NewService(cartsvc.NewRepository(db), productsvc.NewRepository(db))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil, // redis
		nil, // metrics
		stubAuthService{},
		nil, // users
		newProductService(t),
		newCartService(t),
		stubCheckoutService{},
		nil, // orders
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicProductListNeedsNoToken(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProductWritesRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}
}

func TestUserListRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}
}

func TestCartRequiresUserRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin token got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleUser))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for user token got %d", resp.Code)
	}
}

func TestCheckoutRequiresUserRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin token got %d", resp.Code)
	}
}

func TestHealthLiveRoute(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["status"] != "live" {
		t.Fatalf("unexpected body %v", envelope.Data)
	}
}

func TestHealthReadyRoute(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
