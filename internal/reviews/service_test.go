package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/products"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type reviewKey struct {
	productID uuid.UUID
	userID    uuid.UUID
}

type stubRepo struct {
	rows map[reviewKey]*models.Review
}

func newStubRepo() *stubRepo {
	return &stubRepo{rows: map[reviewKey]*models.Review{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Upsert(ctx context.Context, review *models.Review) error {
	key := reviewKey{review.ProductID, review.UserID}
	if existing, ok := s.rows[key]; ok {
		existing.Rating = review.Rating
		existing.Comment = review.Comment
		return nil
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	copied := *review
	s.rows[key] = &copied
	return nil
}

func (s *stubRepo) FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*models.Review, error) {
	review, ok := s.rows[reviewKey{productID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *review
	return &copied, nil
}

func (s *stubRepo) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.Review, string, error) {
	var rows []models.Review
	for key, review := range s.rows {
		if key.productID == productID {
			rows = append(rows, *review)
		}
	}
	return rows, "", nil
}

func (s *stubRepo) AverageRating(ctx context.Context, productID uuid.UUID) (float64, int64, error) {
	var sum, count int64
	for key, review := range s.rows {
		if key.productID == productID {
			sum += int64(review.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for key, review := range s.rows {
		if review.ID == id {
			delete(s.rows, key)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
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
	return product, nil
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

func newTestService(t *testing.T, repo Repository, productsRepo products.Repository) Service {
	t.Helper()
	svc, err := NewService(repo, productsRepo)
	if err != nil {
		t.Fatalf("reviews service: %v", err)
	}
	return svc
}

func TestSubmitUpsertsOneRowPerUserAndProduct(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "Batik", IsActive: true}
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubProductsRepo{products: map[uuid.UUID]*models.Product{product.ID: product}})

	userID := uuid.New()
	comment := "mantap"
	first, err := svc.Submit(context.Background(), userID, SubmitInput{ProductID: product.ID, Rating: 4, Comment: &comment})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, err := svc.Submit(context.Background(), userID, SubmitInput{ProductID: product.ID, Rating: 2})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same row, got %s and %s", first.ID, second.ID)
	}
	if second.Rating != 2 || second.Comment != nil {
		t.Fatalf("resubmit did not overwrite: %+v", second)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(repo.rows))
	}
}

func TestSubmitValidatesRatingAndProduct(t *testing.T) {
	product := &models.Product{ID: uuid.New(), IsActive: true}
	svc := newTestService(t, newStubRepo(), &stubProductsRepo{products: map[uuid.UUID]*models.Product{product.ID: product}})

	for _, rating := range []int{0, 6, -1} {
		if _, err := svc.Submit(context.Background(), uuid.New(), SubmitInput{ProductID: product.ID, Rating: rating}); err == nil {
			t.Fatalf("rating %d should be rejected", rating)
		}
	}
	if _, err := svc.Submit(context.Background(), uuid.New(), SubmitInput{ProductID: uuid.New(), Rating: 3}); err == nil {
		t.Fatal("unknown product should be rejected")
	}
}

func TestSummaryAveragesRatings(t *testing.T) {
	product := &models.Product{ID: uuid.New(), IsActive: true}
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubProductsRepo{products: map[uuid.UUID]*models.Product{product.ID: product}})

	for _, rating := range []int{5, 3} {
		if _, err := svc.Submit(context.Background(), uuid.New(), SubmitInput{ProductID: product.ID, Rating: rating}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	summary, err := svc.Summary(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Count != 2 || summary.Average != 4 {
		t.Fatalf("summary = %+v, want avg 4 over 2", summary)
	}
}

func TestDeleteOwnershipRules(t *testing.T) {
	product := &models.Product{ID: uuid.New(), IsActive: true}
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubProductsRepo{products: map[uuid.UUID]*models.Product{product.ID: product}})

	owner := uuid.New()
	if _, err := svc.Submit(context.Background(), owner, SubmitInput{ProductID: product.ID, Rating: 5}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stranger := Actor{UserID: uuid.New(), Role: enums.UserRoleMember}
	if err := svc.Delete(context.Background(), stranger, product.ID, owner); err == nil {
		t.Fatal("stranger delete must be rejected")
	}

	admin := Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	if err := svc.Delete(context.Background(), admin, product.ID, owner); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatal("review not removed")
	}
}
