package ports

import (
	"context"
	"io"

	"github.com/fieldstone/crm-system/internal/core/domain"
)

// AttachmentRepository defines metadata persistence for attachments.
type AttachmentRepository interface {
	Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error)
	FindByID(ctx context.Context, id string) (*domain.Attachment, error)
	ListByRelated(ctx context.Context, relatedType, relatedID string) ([]*domain.Attachment, error)
	Delete(ctx context.Context, id string) error
}

// BlobStore stores attachment binaries in object storage.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// UploadAttachmentInput carries an incoming multipart upload.
type UploadAttachmentInput struct {
	RelatedType string
	RelatedID   string
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// AttachmentService defines attachment use cases. Non-admin actors only
// see attachments they own.
type AttachmentService interface {
	Upload(ctx context.Context, actor *domain.User, input UploadAttachmentInput) (*domain.Attachment, error)
	Download(ctx context.Context, actor *domain.User, id string) (*domain.Attachment, io.ReadCloser, error)
	ListByRelated(ctx context.Context, actor *domain.User, relatedType, relatedID string) ([]*domain.Attachment, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}
