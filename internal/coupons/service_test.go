package coupons

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	dbtypes "github.com/adiprasetyo/lokalmart-backend/pkg/db/types"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type stubCouponsRepo struct {
	coupons    map[string]*models.Coupon
	increments int
}

func newStubCouponsRepo(rows ...*models.Coupon) *stubCouponsRepo {
	repo := &stubCouponsRepo{coupons: map[string]*models.Coupon{}}
	for _, row := range rows {
		repo.coupons[strings.ToUpper(row.Code)] = row
	}
	return repo
}

func (s *stubCouponsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCouponsRepo) Create(ctx context.Context, coupon *models.Coupon) error {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	s.coupons[strings.ToUpper(coupon.Code)] = coupon
	return nil
}

func (s *stubCouponsRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, ok := s.coupons[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *coupon
	return &copied, nil
}

func (s *stubCouponsRepo) FindByCodeForUpdate(ctx context.Context, code string) (*models.Coupon, error) {
	return s.FindByCode(ctx, code)
}

func (s *stubCouponsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	for _, coupon := range s.coupons {
		if coupon.ID == id {
			copied := *coupon
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCouponsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubCouponsRepo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	s.increments++
	for _, coupon := range s.coupons {
		if coupon.ID == id {
			coupon.CurrentUsage++
		}
	}
	return nil
}

func (s *stubCouponsRepo) List(ctx context.Context, params pagination.Params) ([]models.Coupon, string, error) {
	var rows []models.Coupon
	for _, coupon := range s.coupons {
		rows = append(rows, *coupon)
	}
	return rows, "", nil
}

func (s *stubCouponsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for code, coupon := range s.coupons {
		if coupon.ID == id {
			delete(s.coupons, code)
		}
	}
	return nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("coupons service: %v", err)
	}
	return svc
}

func activeCoupon(code string, discount int64) *models.Coupon {
	return &models.Coupon{
		ID:             uuid.New(),
		Code:           code,
		DiscountAmount: discount,
		IsActive:       true,
	}
}

func TestValidateRejectsSellerProducts(t *testing.T) {
	svc := newTestService(t, newStubCouponsRepo(activeCoupon("DISKON10", 10000)))

	sellerID := uuid.New()
	_, err := svc.Validate(context.Background(), ValidateInput{
		Code:      "DISKON10",
		ProductID: uuid.New(),
		SellerID:  &sellerID,
	})
	if err == nil {
		t.Fatal("expected seller product rejection")
	}
}

func TestValidateUnknownCode(t *testing.T) {
	svc := newTestService(t, newStubCouponsRepo())

	if _, err := svc.Validate(context.Background(), ValidateInput{Code: "NOPE", ProductID: uuid.New()}); err == nil {
		t.Fatal("expected not found")
	}
}

func TestValidateInactiveAndExpired(t *testing.T) {
	inactive := activeCoupon("OFF", 5000)
	inactive.IsActive = false

	past := time.Now().Add(-time.Hour)
	expired := activeCoupon("LATE", 5000)
	expired.ExpiresAt = &past

	svc := newTestService(t, newStubCouponsRepo(inactive, expired))

	if _, err := svc.Validate(context.Background(), ValidateInput{Code: "OFF", ProductID: uuid.New()}); err == nil {
		t.Fatal("expected inactive rejection")
	}
	if _, err := svc.Validate(context.Background(), ValidateInput{Code: "LATE", ProductID: uuid.New()}); err == nil {
		t.Fatal("expected expiry rejection")
	}
}

func TestValidateUsageHeadroom(t *testing.T) {
	max := 3
	coupon := activeCoupon("CAPPED", 5000)
	coupon.MaxUsage = &max
	coupon.CurrentUsage = 3

	svc := newTestService(t, newStubCouponsRepo(coupon))

	if _, err := svc.Validate(context.Background(), ValidateInput{Code: "CAPPED", ProductID: uuid.New()}); err == nil {
		t.Fatal("expected usage cap rejection")
	}
}

func TestValidateProductScope(t *testing.T) {
	inScope := uuid.New()
	coupon := activeCoupon("SCOPED", 5000)
	coupon.ValidProductIDs = dbtypes.UUIDArray{inScope}

	svc := newTestService(t, newStubCouponsRepo(coupon))

	if _, err := svc.Validate(context.Background(), ValidateInput{Code: "SCOPED", ProductID: uuid.New()}); err == nil {
		t.Fatal("expected out-of-scope rejection")
	}
	if _, err := svc.Validate(context.Background(), ValidateInput{Code: "SCOPED", ProductID: inScope}); err != nil {
		t.Fatalf("in-scope product should validate: %v", err)
	}
}

func TestSequentialRedemptionNeverExceedsMaxUsage(t *testing.T) {
	max := 2
	coupon := activeCoupon("LIMIT2", 5000)
	coupon.MaxUsage = &max

	repo := newStubCouponsRepo(coupon)
	svc := newTestService(t, repo)
	tx := &gorm.DB{}

	redeemed := 0
	for i := 0; i < 5; i++ {
		validated, err := svc.ValidateTx(context.Background(), tx, ValidateInput{Code: "LIMIT2", ProductID: uuid.New()})
		if err != nil {
			continue
		}
		if err := svc.RedeemTx(context.Background(), tx, validated.ID); err != nil {
			t.Fatalf("redeem: %v", err)
		}
		redeemed++
	}

	if redeemed != max {
		t.Fatalf("redeemed %d times, want %d", redeemed, max)
	}
	if coupon.CurrentUsage != max {
		t.Fatalf("current usage = %d, want %d", coupon.CurrentUsage, max)
	}
}

func TestCreateNormalizesCode(t *testing.T) {
	svc := newTestService(t, newStubCouponsRepo())

	coupon, err := svc.Create(context.Background(), CreateInput{Code: "  diskon10 ", DiscountAmount: 10000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if coupon.Code != "DISKON10" {
		t.Fatalf("code = %q, want DISKON10", coupon.Code)
	}
}
