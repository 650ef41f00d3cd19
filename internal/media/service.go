package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/pkg/config"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

var allowedImageMimes = []string{"image/png", "image/jpeg", "image/webp"}

type uploader interface {
	Upload(ctx context.Context, object, contentType string, data io.Reader) (string, error)
	Delete(ctx context.Context, object string) error
}

// Service stores uploaded images and hands back their public URLs.
type Service interface {
	Upload(ctx context.Context, actor Actor, input UploadInput) (*models.Media, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Media, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Media, string, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

// Actor identifies the caller of a media operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// UploadInput carries one file upload. Data is streamed to object storage
// after validation, the reader is never buffered in full.
type UploadInput struct {
	Kind      enums.MediaKind
	FileName  string
	MimeType  string
	SizeBytes int64
	Data      io.Reader
}

type service struct {
	repo     Repository
	store    uploader
	maxBytes int64
}

// NewService constructs a media service backed by the provided repository and object store.
func NewService(repo Repository, store uploader, cfg config.MediaConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 10
	}
	return &service{
		repo:     repo,
		store:    store,
		maxBytes: int64(maxMB) * 1024 * 1024,
	}, nil
}

func (s *service) Upload(ctx context.Context, actor Actor, input UploadInput) (*models.Media, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds %d byte limit", s.maxBytes))
	}
	mimeType := strings.ToLower(strings.TrimSpace(input.MimeType))
	if !isAllowedImage(mimeType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only png, jpeg and webp images are accepted")
	}
	if input.Data == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file body is required")
	}

	mediaID := uuid.New()
	objectKey := buildObjectKey(input.Kind, mediaID, fileName)

	// LimitReader guards against clients lying about size_bytes.
	publicURL, err := s.store.Upload(ctx, objectKey, mimeType, io.LimitReader(input.Data, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store object")
	}

	row := &models.Media{
		ID:        mediaID,
		UserID:    actor.UserID,
		Kind:      input.Kind,
		ObjectKey: objectKey,
		URL:       publicURL,
		FileName:  fileName,
		MimeType:  mimeType,
		SizeBytes: input.SizeBytes,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		_ = s.store.Delete(ctx, objectKey)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist media row")
	}
	return row, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "media not found")
	}
	return row, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Media, string, error) {
	rows, next, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media")
	}
	return rows, next, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "media not found")
	}
	if row.UserID != actor.UserID && actor.Role != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete someone else's upload")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete media row")
	}
	if err := s.store.Delete(ctx, row.ObjectKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete object")
	}
	return nil
}

func isAllowedImage(mimeType string) bool {
	for _, candidate := range allowedImageMimes {
		if candidate == mimeType {
			return true
		}
	}
	return false
}

func buildObjectKey(kind enums.MediaKind, id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("media/%s/%s/%s", kind, id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
