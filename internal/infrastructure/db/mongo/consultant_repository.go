package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

const consultantsCollection = "consultants"

type ConsultantRepository struct {
	coll *mongo.Collection
}

func NewConsultantRepository(db *mongo.Database) *ConsultantRepository {
	return &ConsultantRepository{coll: db.Collection(consultantsCollection)}
}

func (r *ConsultantRepository) Create(ctx context.Context, c *domain.Consultant) (*domain.Consultant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c.ID = newID()
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrConsultantIDTaken
		}
		return nil, fmt.Errorf("insert consultant: %w", err)
	}
	return c, nil
}

func (r *ConsultantRepository) FindByID(ctx context.Context, id string) (*domain.Consultant, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ConsultantRepository) FindByCode(ctx context.Context, code string) (*domain.Consultant, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *ConsultantRepository) findOne(ctx context.Context, filter bson.M) (*domain.Consultant, error) {
	var c domain.Consultant
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConsultantNotFound
		}
		return nil, fmt.Errorf("find consultant: %w", err)
	}
	return &c, nil
}

func (r *ConsultantRepository) List(ctx context.Context, filter ports.ListConsultantsFilter) ([]*domain.Consultant, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		re := primitive.Regex{Pattern: filter.Search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"first_name": re},
			bson.M{"last_name": re},
			bson.M{"code": re},
			bson.M{"email": re},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count consultants: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list consultants: %w", err)
	}
	defer cur.Close(ctx)

	var consultants []*domain.Consultant
	for cur.Next(ctx) {
		var c domain.Consultant
		if err := cur.Decode(&c); err != nil {
			return nil, 0, fmt.Errorf("decode consultant: %w", err)
		}
		consultants = append(consultants, &c)
	}
	return consultants, total, cur.Err()
}

func (r *ConsultantRepository) Update(ctx context.Context, c *domain.Consultant) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return fmt.Errorf("update consultant: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConsultantNotFound
	}
	return nil
}

func (r *ConsultantRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete consultant: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrConsultantNotFound
	}
	return nil
}

// EnsureIndexes creates the unique code index.
func (r *ConsultantRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

var _ ports.ConsultantRepository = (*ConsultantRepository)(nil)
