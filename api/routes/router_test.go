package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/internal/products"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	pkgauth "github.com/adiprasetyo/lokalmart-backend/pkg/auth"
	"github.com/adiprasetyo/lokalmart-backend/pkg/auth/session"
	"github.com/adiprasetyo/lokalmart-backend/pkg/config"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubUsersService struct{}

func (stubUsersService) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return &models.User{ID: id, Name: "Stub User", Email: "stub@example.com"}, nil
}

func (stubUsersService) UpdateProfile(context.Context, uuid.UUID, users.UpdateProfileInput) (*models.User, error) {
	return &models.User{}, nil
}

func (stubUsersService) Follow(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubUsersService) Unfollow(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubUsersService) List(context.Context, pagination.Params, users.ListFilters) ([]models.User, string, error) {
	return nil, "", nil
}

func (stubUsersService) SetBanned(context.Context, users.Actor, uuid.UUID, bool) error {
	return nil
}

func (stubUsersService) SetVerified(context.Context, users.Actor, uuid.UUID, bool) error {
	return nil
}

func (stubUsersService) Delete(context.Context, users.Actor, uuid.UUID) error {
	return nil
}

type stubProductsService struct{}

func (stubProductsService) List(context.Context, pagination.Params, products.ListFilters) ([]models.Product, string, error) {
	return []models.Product{}, "", nil
}

func (stubProductsService) Get(_ context.Context, id uuid.UUID) (*models.Product, error) {
	return &models.Product{ID: id, Name: "Keripik Singkong"}, nil
}

func (stubProductsService) CreateSellerProduct(context.Context, uuid.UUID, products.CreateInput) (*models.Product, error) {
	return &models.Product{ID: uuid.New()}, nil
}

func (stubProductsService) CreatePlatformProduct(context.Context, users.Actor, products.CreateInput) (*models.Product, error) {
	return &models.Product{ID: uuid.New()}, nil
}

func (stubProductsService) UpdateSellerProduct(context.Context, uuid.UUID, uuid.UUID, products.UpdateInput) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubProductsService) DeleteSellerProduct(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubProductsService) SetFlashSale(context.Context, users.Actor, uuid.UUID, bool) error {
	return nil
}

func (stubProductsService) SetBoosted(context.Context, users.Actor, uuid.UUID, bool) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logg,
		Sessions: stubSessions{},
		Users:    stubUsersService{},
		Products: stubProductsService{},
	})
}

func mintToken(t *testing.T, cfg *config.Config, role enums.UserRole, isSeller bool) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Role:     role,
		IsSeller: isSeller,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog got %d", resp.Code)
	}
}

func TestAuthedRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAuthedRoutesAcceptValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.UserRoleMember, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for profile got %d", resp.Code)
	}
}

func TestSellerRoutesRequireActiveStore(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"name":"Kopi Gayo 250g","category":"food","price":45000,"stock":10}`

	member := httptest.NewRequest(http.MethodPost, "/api/v1/seller/products", strings.NewReader(body))
	member.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.UserRoleMember, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, member)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without active store got %d", resp.Code)
	}

	seller := httptest.NewRequest(http.MethodPost, "/api/v1/seller/products", strings.NewReader(body))
	seller.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.UserRoleSeller, true))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, seller)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for seller create got %d", resp.Code)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	member := httptest.NewRequest(http.MethodGet, "/api/admin/v1/users", nil)
	member.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.UserRoleMember, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, member)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/users", nil)
	admin.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.UserRoleAdmin, false))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}
