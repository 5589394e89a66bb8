package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

// maxAttachmentSize caps a single upload at 25 MiB.
const maxAttachmentSize = 25 << 20

// AttachmentService stores attachment binaries in object storage and their
// metadata in the document store. Non-admin actors only touch their own
// attachments.
type AttachmentService struct {
	repo   ports.AttachmentRepository
	blobs  ports.BlobStore
	logger zerolog.Logger
}

func NewAttachmentService(repo ports.AttachmentRepository, blobs ports.BlobStore, logger zerolog.Logger) *AttachmentService {
	return &AttachmentService{repo: repo, blobs: blobs, logger: logger}
}

func (s *AttachmentService) Upload(ctx context.Context, actor *domain.User, input ports.UploadAttachmentInput) (*domain.Attachment, error) {
	if input.Filename == "" || input.RelatedType == "" || input.RelatedID == "" {
		return nil, fmt.Errorf("%w: filename, related_type and related_id are required", domain.ErrValidation)
	}
	if input.Size <= 0 || input.Size > maxAttachmentSize {
		return nil, fmt.Errorf("%w: attachment size must be between 1 byte and 25 MiB", domain.ErrValidation)
	}

	token := make([]byte, 8)
	if _, err := rand.Read(token); err != nil {
		return nil, fmt.Errorf("generate object key: %w", err)
	}
	key := fmt.Sprintf("attachments/%s_%s", hex.EncodeToString(token), input.Filename)

	if err := s.blobs.Put(ctx, key, input.Body, input.Size, input.ContentType); err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	a := &domain.Attachment{
		OwnerID:     actor.ID,
		RelatedType: input.RelatedType,
		RelatedID:   input.RelatedID,
		Filename:    input.Filename,
		Size:        input.Size,
		ContentType: input.ContentType,
		ObjectKey:   key,
		UploadedAt:  time.Now().UTC(),
	}
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		// The blob is orphaned if this removal fails too; the metadata
		// insert error is still the one the caller needs to see.
		if rmErr := s.blobs.Remove(ctx, key); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("key", key).Msg("failed to clean up orphaned blob")
		}
		return nil, err
	}

	s.logger.Info().Str("attachment_id", created.ID).Str("owner", actor.ID).Int64("size", created.Size).Msg("attachment uploaded")
	return created, nil
}

func (s *AttachmentService) Download(ctx context.Context, actor *domain.User, id string) (*domain.Attachment, io.ReadCloser, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !actor.IsAdmin && a.OwnerID != actor.ID {
		return nil, nil, domain.ErrPermission
	}

	body, err := s.blobs.Get(ctx, a.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch attachment: %w", err)
	}
	return a, body, nil
}

func (s *AttachmentService) ListByRelated(ctx context.Context, actor *domain.User, relatedType, relatedID string) ([]*domain.Attachment, error) {
	all, err := s.repo.ListByRelated(ctx, relatedType, relatedID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin {
		return all, nil
	}
	owned := make([]*domain.Attachment, 0, len(all))
	for _, a := range all {
		if a.OwnerID == actor.ID {
			owned = append(owned, a)
		}
	}
	return owned, nil
}

func (s *AttachmentService) Delete(ctx context.Context, actor *domain.User, id string) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin && a.OwnerID != actor.ID {
		return domain.ErrPermission
	}

	if err := s.blobs.Remove(ctx, a.ObjectKey); err != nil {
		return fmt.Errorf("remove attachment blob: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

var _ ports.AttachmentService = (*AttachmentService)(nil)
