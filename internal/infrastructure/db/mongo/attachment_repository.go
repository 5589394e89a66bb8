package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

const attachmentsCollection = "attachments"

type AttachmentRepository struct {
	coll *mongo.Collection
}

func NewAttachmentRepository(db *mongo.Database) *AttachmentRepository {
	return &AttachmentRepository{coll: db.Collection(attachmentsCollection)}
}

func (r *AttachmentRepository) Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	a.ID = newID()
	if _, err := r.coll.InsertOne(ctx, a); err != nil {
		return nil, fmt.Errorf("insert attachment: %w", err)
	}
	return a, nil
}

func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*domain.Attachment, error) {
	var a domain.Attachment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("find attachment: %w", err)
	}
	return &a, nil
}

func (r *AttachmentRepository) ListByRelated(ctx context.Context, relatedType, relatedID string) ([]*domain.Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"related_type": relatedType, "related_id": relatedID}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Attachment
	for cur.Next(ctx) {
		var a domain.Attachment
		if err := cur.Decode(&a); err != nil {
			return nil, fmt.Errorf("decode attachment: %w", err)
		}
		out = append(out, &a)
	}
	return out, cur.Err()
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAttachmentNotFound
	}
	return nil
}

var _ ports.AttachmentRepository = (*AttachmentRepository)(nil)
