package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/coupons"
	"github.com/adiprasetyo/lokalmart-backend/internal/products"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type stubCartRepo struct {
	items   map[uuid.UUID]*models.CartItem
	updates map[uuid.UUID]map[string]any
	cleared []uuid.UUID
}

func newStubCartRepo(rows ...*models.CartItem) *stubCartRepo {
	repo := &stubCartRepo{
		items:   map[uuid.UUID]*models.CartItem{},
		updates: map[uuid.UUID]map[string]any{},
	}
	for _, row := range rows {
		repo.items[row.ID] = row
	}
	return repo
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) Create(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return nil
}

func (s *stubCartRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *stubCartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	for _, item := range s.items {
		if item.UserID == userID {
			rows = append(rows, *item)
		}
	}
	return rows, nil
}

func (s *stubCartRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updates[id] == nil {
		s.updates[id] = map[string]any{}
	}
	for key, value := range updates {
		s.updates[id][key] = value
	}
	return nil
}

func (s *stubCartRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.items, id)
	return nil
}

func (s *stubCartRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	s.cleared = append(s.cleared, userID)
	for id, item := range s.items {
		if item.UserID == userID {
			delete(s.items, id)
		}
	}
	return nil
}

type stubProductsRepo struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) products.Repository { return s }

func (s *stubProductsRepo) Create(ctx context.Context, product *models.Product) error {
	panic("not implemented")
}

func (s *stubProductsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (s *stubProductsRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.FindByID(ctx, id)
}

func (s *stubProductsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubProductsRepo) Delete(ctx context.Context, id uuid.UUID) error { panic("not implemented") }

func (s *stubProductsRepo) List(ctx context.Context, params pagination.Params, filters products.ListFilters) ([]models.Product, string, error) {
	panic("not implemented")
}

func (s *stubProductsRepo) CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	panic("not implemented")
}

type stubCouponsService struct {
	coupon *models.Coupon
	err    error
}

func (s *stubCouponsService) Validate(ctx context.Context, input coupons.ValidateInput) (*models.Coupon, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.coupon, nil
}

func (s *stubCouponsService) ValidateTx(ctx context.Context, tx *gorm.DB, input coupons.ValidateInput) (*models.Coupon, error) {
	return s.Validate(ctx, input)
}

func (s *stubCouponsService) RedeemTx(ctx context.Context, tx *gorm.DB, couponID uuid.UUID) error {
	return nil
}

func (s *stubCouponsService) Create(ctx context.Context, input coupons.CreateInput) (*models.Coupon, error) {
	panic("not implemented")
}

func (s *stubCouponsService) Update(ctx context.Context, id uuid.UUID, input coupons.UpdateInput) (*models.Coupon, error) {
	panic("not implemented")
}

func (s *stubCouponsService) List(ctx context.Context, params pagination.Params) ([]models.Coupon, string, error) {
	panic("not implemented")
}

func (s *stubCouponsService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("not implemented")
}

func newTestService(t *testing.T, repo Repository, productsRepo products.Repository, couponsSvc coupons.Service) Service {
	t.Helper()
	svc, err := NewService(repo, productsRepo, couponsSvc)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	return svc
}

func TestUpsertNewLineSnapshotsProduct(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "Kopi Gayo", Price: 50000, IsActive: true}
	productsRepo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{product.ID: product}}
	repo := newStubCartRepo()
	svc := newTestService(t, repo, productsRepo, &stubCouponsService{})

	userID := uuid.New()
	item, err := svc.UpsertItem(context.Background(), userID, UpsertInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if item.ProductName != "Kopi Gayo" || item.UnitPrice != 50000 || item.Quantity != 2 {
		t.Fatalf("snapshot mismatch: %+v", item)
	}
}

func TestUpsertSameProductStacksAsNewLine(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "Kopi", Price: 10000, IsActive: true}
	productsRepo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{product.ID: product}}
	repo := newStubCartRepo()
	svc := newTestService(t, repo, productsRepo, &stubCouponsService{})

	userID := uuid.New()
	for i := 0; i < 2; i++ {
		if _, err := svc.UpsertItem(context.Background(), userID, UpsertInput{ProductID: product.ID, Quantity: 1}); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	rows, _ := svc.List(context.Background(), userID)
	if len(rows) != 2 {
		t.Fatalf("lines = %d, want 2 (duplicates stack)", len(rows))
	}
}

func TestApplyCouponRewritesLine(t *testing.T) {
	userID := uuid.New()
	line := &models.CartItem{ID: uuid.New(), UserID: userID, ProductID: uuid.New(), UnitPrice: 50000, Quantity: 1}
	repo := newStubCartRepo(line)
	coupon := &models.Coupon{ID: uuid.New(), Code: "DISKON10", DiscountAmount: 10000, IsActive: true}
	svc := newTestService(t, repo, &stubProductsRepo{}, &stubCouponsService{coupon: coupon})

	if _, err := svc.ApplyCoupon(context.Background(), userID, line.ID, "DISKON10"); err != nil {
		t.Fatalf("apply coupon: %v", err)
	}

	updates := repo.updates[line.ID]
	if updates["coupon_code"] != "DISKON10" {
		t.Fatalf("coupon_code update = %v", updates["coupon_code"])
	}
	if updates["discount_amount"] != int64(10000) {
		t.Fatalf("discount_amount update = %v", updates["discount_amount"])
	}
}

func TestRemoveItemChecksOwnership(t *testing.T) {
	line := &models.CartItem{ID: uuid.New(), UserID: uuid.New()}
	repo := newStubCartRepo(line)
	svc := newTestService(t, repo, &stubProductsRepo{}, &stubCouponsService{})

	if err := svc.RemoveItem(context.Background(), uuid.New(), line.ID); err == nil {
		t.Fatal("expected ownership rejection")
	}
}
