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

const (
	securiaConsultantsCollection = "securia_consultants"
	securiaClientsCollection     = "securia_clients"
)

// SecuriaRepository persists the sensitive-data entities. SSNs arrive
// already encrypted; this layer never sees plaintext PII.
type SecuriaRepository struct {
	consultants *mongo.Collection
	clients     *mongo.Collection
}

func NewSecuriaRepository(db *mongo.Database) *SecuriaRepository {
	return &SecuriaRepository{
		consultants: db.Collection(securiaConsultantsCollection),
		clients:     db.Collection(securiaClientsCollection),
	}
}

func (r *SecuriaRepository) CreateConsultant(ctx context.Context, c *domain.SecuriaConsultant) (*domain.SecuriaConsultant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c.ID = newID()
	if _, err := r.consultants.InsertOne(ctx, c); err != nil {
		return nil, fmt.Errorf("insert securia consultant: %w", err)
	}
	return c, nil
}

func (r *SecuriaRepository) FindConsultant(ctx context.Context, id string) (*domain.SecuriaConsultant, error) {
	var c domain.SecuriaConsultant
	if err := r.consultants.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSecuriaConsultantNotFound
		}
		return nil, fmt.Errorf("find securia consultant: %w", err)
	}
	return &c, nil
}

func (r *SecuriaRepository) ListConsultants(ctx context.Context, page, limit int) ([]*domain.SecuriaConsultant, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.consultants.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count securia consultants: %w", err)
	}

	cur, err := r.consultants.Find(ctx, bson.M{}, pageOpts(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list securia consultants: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.SecuriaConsultant
	for cur.Next(ctx) {
		var c domain.SecuriaConsultant
		if err := cur.Decode(&c); err != nil {
			return nil, 0, fmt.Errorf("decode securia consultant: %w", err)
		}
		out = append(out, &c)
	}
	return out, total, cur.Err()
}

func (r *SecuriaRepository) UpdateConsultant(ctx context.Context, c *domain.SecuriaConsultant) error {
	res, err := r.consultants.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return fmt.Errorf("update securia consultant: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSecuriaConsultantNotFound
	}
	return nil
}

func (r *SecuriaRepository) DeleteConsultant(ctx context.Context, id string) error {
	res, err := r.consultants.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete securia consultant: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSecuriaConsultantNotFound
	}
	return nil
}

func (r *SecuriaRepository) CreateClient(ctx context.Context, c *domain.SecuriaClient) (*domain.SecuriaClient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c.ID = newID()
	if _, err := r.clients.InsertOne(ctx, c); err != nil {
		return nil, fmt.Errorf("insert securia client: %w", err)
	}
	return c, nil
}

func (r *SecuriaRepository) FindClient(ctx context.Context, id string) (*domain.SecuriaClient, error) {
	var c domain.SecuriaClient
	if err := r.clients.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSecuriaClientNotFound
		}
		return nil, fmt.Errorf("find securia client: %w", err)
	}
	return &c, nil
}

func (r *SecuriaRepository) ListClients(ctx context.Context, page, limit int) ([]*domain.SecuriaClient, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.clients.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count securia clients: %w", err)
	}

	cur, err := r.clients.Find(ctx, bson.M{}, pageOpts(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list securia clients: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.SecuriaClient
	for cur.Next(ctx) {
		var c domain.SecuriaClient
		if err := cur.Decode(&c); err != nil {
			return nil, 0, fmt.Errorf("decode securia client: %w", err)
		}
		out = append(out, &c)
	}
	return out, total, cur.Err()
}

func (r *SecuriaRepository) UpdateClient(ctx context.Context, c *domain.SecuriaClient) error {
	res, err := r.clients.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return fmt.Errorf("update securia client: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSecuriaClientNotFound
	}
	return nil
}

func (r *SecuriaRepository) DeleteClient(ctx context.Context, id string) error {
	res, err := r.clients.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete securia client: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSecuriaClientNotFound
	}
	return nil
}

func pageOpts(page, limit int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
}

var _ ports.SecuriaRepository = (*SecuriaRepository)(nil)
