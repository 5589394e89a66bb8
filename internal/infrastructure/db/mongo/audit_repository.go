package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

const auditCollection = "securia_audit_log"

// AuditRepository is insert-only: the application never updates or deletes
// audit documents.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

func (r *AuditRepository) Insert(ctx context.Context, rec *domain.AuditRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rec.ID = newID()
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, filter ports.ListAuditFilter) ([]*domain.AuditRecord, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Actor != "" {
		query["actor"] = filter.Actor
	}
	if filter.Resource != "" {
		query["resource"] = filter.Resource
	}
	ts := bson.M{}
	if !filter.From.IsZero() {
		ts["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		ts["$lte"] = filter.To
	}
	if len(ts) > 0 {
		query["timestamp"] = ts
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count audit records: %w", err)
	}

	cur, err := r.coll.Find(ctx, query, pageOpts(filter.Page, filter.Limit).SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("list audit records: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.AuditRecord
	for cur.Next(ctx) {
		var rec domain.AuditRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, 0, fmt.Errorf("decode audit record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, total, cur.Err()
}

// EnsureIndexes creates the query indexes for the audit trail.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "actor", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "resource", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	return err
}

var _ ports.AuditRepository = (*AuditRepository)(nil)
