package media

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/pkg/config"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type stubRepo struct {
	rows      map[uuid.UUID]*models.Media
	createErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{rows: map[uuid.UUID]*models.Media{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, media *models.Media) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.rows[media.ID] = media
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Media, string, error) {
	var out []models.Media
	for _, row := range s.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, "", nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.rows, id)
	return nil
}

type stubStore struct {
	uploaded map[string]string
	deleted  []string
}

func newStubStore() *stubStore {
	return &stubStore{uploaded: map[string]string{}}
}

func (s *stubStore) Upload(ctx context.Context, object, contentType string, data io.Reader) (string, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	s.uploaded[object] = string(body)
	return "https://storage.googleapis.com/lokalmart-media/" + object, nil
}

func (s *stubStore) Delete(ctx context.Context, object string) error {
	s.deleted = append(s.deleted, object)
	return nil
}

func newTestService(t *testing.T, repo Repository, store uploader) Service {
	t.Helper()
	svc, err := NewService(repo, store, config.MediaConfig{MaxUploadMB: 1})
	if err != nil {
		t.Fatalf("media service: %v", err)
	}
	return svc
}

func TestUploadStoresObjectAndRow(t *testing.T) {
	repo := newStubRepo()
	store := newStubStore()
	svc := newTestService(t, repo, store)
	actor := Actor{UserID: uuid.New(), Role: enums.UserRoleMember}

	row, err := svc.Upload(context.Background(), actor, UploadInput{
		Kind:      enums.MediaKindPaymentProof,
		FileName:  "bukti transfer.png",
		MimeType:  "IMAGE/PNG",
		SizeBytes: 9,
		Data:      strings.NewReader("png-bytes"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if row.MimeType != "image/png" {
		t.Fatalf("mime = %q, want lowercased", row.MimeType)
	}
	if !strings.HasPrefix(row.ObjectKey, "media/PAYMENT_PROOF/") || !strings.HasSuffix(row.ObjectKey, "/bukti-transfer.png") {
		t.Fatalf("object key = %q", row.ObjectKey)
	}
	if row.URL == "" || !strings.HasSuffix(row.URL, row.ObjectKey) {
		t.Fatalf("url = %q", row.URL)
	}
	if store.uploaded[row.ObjectKey] != "png-bytes" {
		t.Fatalf("stored body = %q", store.uploaded[row.ObjectKey])
	}
	if _, ok := repo.rows[row.ID]; !ok {
		t.Fatal("expected a persisted media row")
	}
}

func TestUploadValidation(t *testing.T) {
	svc := newTestService(t, newStubRepo(), newStubStore())
	actor := Actor{UserID: uuid.New()}
	base := UploadInput{
		Kind:      enums.MediaKindAvatar,
		FileName:  "me.png",
		MimeType:  "image/png",
		SizeBytes: 10,
		Data:      strings.NewReader("x"),
	}

	cases := map[string]func(UploadInput) UploadInput{
		"bad kind":     func(in UploadInput) UploadInput { in.Kind = "SELFIE"; return in },
		"blank name":   func(in UploadInput) UploadInput { in.FileName = "  "; return in },
		"zero size":    func(in UploadInput) UploadInput { in.SizeBytes = 0; return in },
		"oversize":     func(in UploadInput) UploadInput { in.SizeBytes = 2 * 1024 * 1024; return in },
		"bad mime":     func(in UploadInput) UploadInput { in.MimeType = "application/pdf"; return in },
		"missing body": func(in UploadInput) UploadInput { in.Data = nil; return in },
	}
	for name, mutate := range cases {
		if _, err := svc.Upload(context.Background(), actor, mutate(base)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}

	if _, err := svc.Upload(context.Background(), Actor{}, base); err == nil {
		t.Error("missing actor: expected validation error")
	}
}

func TestUploadRollsBackObjectWhenRowFails(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = gorm.ErrInvalidDB
	store := newStubStore()
	svc := newTestService(t, repo, store)

	_, err := svc.Upload(context.Background(), Actor{UserID: uuid.New()}, UploadInput{
		Kind:      enums.MediaKindProductPhoto,
		FileName:  "kopi.jpg",
		MimeType:  "image/jpeg",
		SizeBytes: 4,
		Data:      strings.NewReader("jpeg"),
	})
	if err == nil {
		t.Fatal("expected error when the row insert fails")
	}
	if len(store.deleted) != 1 {
		t.Fatalf("deleted = %v, want orphaned object removed", store.deleted)
	}
}

func TestDeleteRequiresOwnershipOrAdmin(t *testing.T) {
	repo := newStubRepo()
	store := newStubStore()
	svc := newTestService(t, repo, store)
	owner := Actor{UserID: uuid.New(), Role: enums.UserRoleMember}

	row, err := svc.Upload(context.Background(), owner, UploadInput{
		Kind:      enums.MediaKindAvatar,
		FileName:  "me.webp",
		MimeType:  "image/webp",
		SizeBytes: 4,
		Data:      strings.NewReader("webp"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	outsider := Actor{UserID: uuid.New(), Role: enums.UserRoleMember}
	err = svc.Delete(context.Background(), outsider, row.ID)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}

	admin := Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	if err := svc.Delete(context.Background(), admin, row.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != row.ObjectKey {
		t.Fatalf("deleted = %v", store.deleted)
	}
	if _, err := svc.Get(context.Background(), row.ID); err == nil {
		t.Fatal("row should be gone")
	}
}
