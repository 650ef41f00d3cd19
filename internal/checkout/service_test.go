package checkout

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/cart"
	"github.com/adiprasetyo/lokalmart-backend/internal/coupons"
	"github.com/adiprasetyo/lokalmart-backend/internal/orders"
	"github.com/adiprasetyo/lokalmart-backend/internal/products"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	"github.com/adiprasetyo/lokalmart-backend/pkg/outbox"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type stubCartRepo struct {
	items   []models.CartItem
	cleared bool
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) cart.Repository { return s }

func (s *stubCartRepo) Create(ctx context.Context, item *models.CartItem) error {
	panic("not implemented")
}

func (s *stubCartRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	panic("not implemented")
}

func (s *stubCartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return s.items, nil
}

func (s *stubCartRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubCartRepo) Delete(ctx context.Context, id uuid.UUID) error { panic("not implemented") }

func (s *stubCartRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	s.cleared = true
	s.items = nil
	return nil
}

type stubProductsRepo struct {
	products map[uuid.UUID]*models.Product
	stockOps int
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
	s.stockOps++
	return nil
}

func (s *stubProductsRepo) Delete(ctx context.Context, id uuid.UUID) error { panic("not implemented") }

func (s *stubProductsRepo) List(ctx context.Context, params pagination.Params, filters products.ListFilters) ([]models.Product, string, error) {
	panic("not implemented")
}

func (s *stubProductsRepo) CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	panic("not implemented")
}

type stubOrdersRepo struct {
	created   []models.Order
	failOnNth int
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) error {
	if s.failOnNth > 0 && len(s.created)+1 == s.failOnNth {
		return gorm.ErrInvalidData
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = append(s.created, *order)
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params, filters orders.ListFilters) ([]models.Order, string, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters orders.ListFilters) ([]models.Order, string, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListAll(ctx context.Context, params pagination.Params, filters orders.ListFilters) ([]models.Order, string, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) FindPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) FindTerminalOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	panic("not implemented")
}

type stubCouponsService struct {
	coupon      *models.Coupon
	validateErr error
	redeems     int
}

func (s *stubCouponsService) Validate(ctx context.Context, input coupons.ValidateInput) (*models.Coupon, error) {
	return s.ValidateTx(ctx, nil, input)
}

func (s *stubCouponsService) ValidateTx(ctx context.Context, tx *gorm.DB, input coupons.ValidateInput) (*models.Coupon, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	if input.SellerID != nil {
		return nil, gorm.ErrInvalidData
	}
	return s.coupon, nil
}

func (s *stubCouponsService) RedeemTx(ctx context.Context, tx *gorm.DB, couponID uuid.UUID) error {
	s.redeems++
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

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (r *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func newTestService(t *testing.T, cartRepo cart.Repository, productsRepo products.Repository, couponsSvc coupons.Service, ordersRepo orders.Repository, ob *recordingOutbox) Service {
	t.Helper()
	svc, err := NewService(cartRepo, productsRepo, couponsSvc, ordersRepo, passthroughTxRunner{}, ob, nil, Config{OrderNumberPrefix: "LM"})
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}
	return svc
}

func TestCheckoutAppliesCouponAgainstFreshPrice(t *testing.T) {
	userID := uuid.New()
	product := &models.Product{ID: uuid.New(), Name: "Batik", Price: 50000, Stock: 10, IsActive: true}
	code := "DISKON10"
	cartRepo := &stubCartRepo{items: []models.CartItem{{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  1,
		// Stale snapshot on purpose; checkout must re-read.
		UnitPrice:  1,
		CouponCode: &code,
	}}}
	productsRepo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{product.ID: product}}
	couponsSvc := &stubCouponsService{coupon: &models.Coupon{ID: uuid.New(), Code: code, DiscountAmount: 10000, IsActive: true}}
	ordersRepo := &stubOrdersRepo{}
	ob := &recordingOutbox{}
	svc := newTestService(t, cartRepo, productsRepo, couponsSvc, ordersRepo, ob)

	created, err := svc.Checkout(context.Background(), userID)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("orders = %d, want 1", len(created))
	}

	order := created[0]
	if order.OriginalPrice != 50000 {
		t.Fatalf("original price = %d, want 50000 (fresh read)", order.OriginalPrice)
	}
	if order.Price != 40000 || order.DiscountAmount != 10000 {
		t.Fatalf("price = %d discount = %d, want 40000/10000", order.Price, order.DiscountAmount)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("status = %s, want PENDING", order.Status)
	}
	if !strings.HasPrefix(order.OrderNumber, "LM-") {
		t.Fatalf("order number %q missing prefix", order.OrderNumber)
	}
	if couponsSvc.redeems != 1 {
		t.Fatalf("coupon redeems = %d, want 1", couponsSvc.redeems)
	}
	if !cartRepo.cleared {
		t.Fatal("cart should be cleared after full checkout")
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventOrderCreated {
		t.Fatalf("expected one order_created event, got %+v", ob.events)
	}
}

func TestCheckoutPartialFailureKeepsEarlierOrdersAndCart(t *testing.T) {
	userID := uuid.New()
	first := &models.Product{ID: uuid.New(), Name: "Kopi", Price: 20000, Stock: 5, IsActive: true}
	second := &models.Product{ID: uuid.New(), Name: "Teh", Price: 15000, Stock: 5, IsActive: true}
	cartRepo := &stubCartRepo{items: []models.CartItem{
		{ID: uuid.New(), UserID: userID, ProductID: first.ID, Quantity: 1},
		{ID: uuid.New(), UserID: userID, ProductID: second.ID, Quantity: 1},
	}}
	productsRepo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{
		first.ID:  first,
		second.ID: second,
	}}
	ordersRepo := &stubOrdersRepo{failOnNth: 2}
	svc := newTestService(t, cartRepo, productsRepo, &stubCouponsService{}, ordersRepo, &recordingOutbox{})

	created, err := svc.Checkout(context.Background(), userID)
	if err == nil {
		t.Fatal("expected checkout to fail on second line")
	}
	if len(created) != 1 {
		t.Fatalf("committed orders = %d, want 1 (first line survives)", len(created))
	}
	if cartRepo.cleared {
		t.Fatal("cart must stay intact after mid-way failure")
	}
}

func TestCheckoutRejectsEmptyCartAndStockouts(t *testing.T) {
	userID := uuid.New()
	svc := newTestService(t, &stubCartRepo{}, &stubProductsRepo{}, &stubCouponsService{}, &stubOrdersRepo{}, &recordingOutbox{})
	if _, err := svc.Checkout(context.Background(), userID); err == nil {
		t.Fatal("expected empty cart rejection")
	}

	product := &models.Product{ID: uuid.New(), Name: "Kopi", Price: 20000, Stock: 1, IsActive: true}
	cartRepo := &stubCartRepo{items: []models.CartItem{{ID: uuid.New(), UserID: userID, ProductID: product.ID, Quantity: 3}}}
	productsRepo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc = newTestService(t, cartRepo, productsRepo, &stubCouponsService{}, &stubOrdersRepo{}, &recordingOutbox{})
	if _, err := svc.Checkout(context.Background(), userID); err == nil {
		t.Fatal("expected stock rejection")
	}
}
