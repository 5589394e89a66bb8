package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

const pagePermissionsCollection = "page_permissions"

type PermissionRepository struct {
	coll *mongo.Collection
}

func NewPermissionRepository(db *mongo.Database) *PermissionRepository {
	return &PermissionRepository{coll: db.Collection(pagePermissionsCollection)}
}

// Upsert writes the whole permission map for a page, keyed by page name.
func (r *PermissionRepository) Upsert(ctx context.Context, p *domain.PagePermission) (*domain.PagePermission, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"role_permissions": p.RolePermissions,
		"updated_by":       p.UpdatedBy,
		"updated_at":       p.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out domain.PagePermission
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"page_name": p.PageName}, update, opts).Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("upsert page permission: %w", err)
	}
	return &out, nil
}

func (r *PermissionRepository) FindByPage(ctx context.Context, pageName string) (*domain.PagePermission, error) {
	var p domain.PagePermission
	if err := r.coll.FindOne(ctx, bson.M{"page_name": pageName}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPagePermissionNotFound
		}
		return nil, fmt.Errorf("find page permission: %w", err)
	}
	return &p, nil
}

func (r *PermissionRepository) List(ctx context.Context) ([]*domain.PagePermission, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "page_name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list page permissions: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.PagePermission
	for cur.Next(ctx) {
		var p domain.PagePermission
		if err := cur.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode page permission: %w", err)
		}
		out = append(out, &p)
	}
	return out, cur.Err()
}

// EnsureIndexes creates the unique page-name index.
func (r *PermissionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "page_name", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}

var _ ports.PermissionRepository = (*PermissionRepository)(nil)
