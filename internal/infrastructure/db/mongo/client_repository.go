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

const (
	clientsCollection       = "clients"
	applicantsCollection    = "applicants"
	coApplicantsCollection  = "co_applicants"
	liabilitiesCollection   = "liabilities"
	mortgagesCollection     = "mortgages"
	underwritingsCollection = "underwritings"
	driversCollection       = "drivers"
)

// ClientRepository persists the client aggregate across seven collections.
// Document ids are ObjectID hex strings assigned before insert so child
// references can be written inside the same transaction. No per-call
// timeouts here: transactional calls must run under the session's context.
type ClientRepository struct {
	clients       *mongo.Collection
	applicants    *mongo.Collection
	coApplicants  *mongo.Collection
	liabilities   *mongo.Collection
	mortgages     *mongo.Collection
	underwritings *mongo.Collection
	drivers       *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{
		clients:       db.Collection(clientsCollection),
		applicants:    db.Collection(applicantsCollection),
		coApplicants:  db.Collection(coApplicantsCollection),
		liabilities:   db.Collection(liabilitiesCollection),
		mortgages:     db.Collection(mortgagesCollection),
		underwritings: db.Collection(underwritingsCollection),
		drivers:       db.Collection(driversCollection),
	}
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func (r *ClientRepository) CreateClient(ctx context.Context, c *domain.Client) (string, error) {
	c.ID = newID()
	if _, err := r.clients.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrDuplicateClient
		}
		return "", fmt.Errorf("insert client: %w", err)
	}
	return c.ID, nil
}

func (r *ClientRepository) UpdateClient(ctx context.Context, c *domain.Client) error {
	res, err := r.clients.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) FindClientByID(ctx context.Context, id string) (*domain.Client, error) {
	return r.findClient(ctx, bson.M{"_id": id})
}

func (r *ClientRepository) FindClientByCode(ctx context.Context, code string) (*domain.Client, error) {
	return r.findClient(ctx, bson.M{"client_code": code})
}

func (r *ClientRepository) findClient(ctx context.Context, filter bson.M) (*domain.Client, error) {
	var c domain.Client
	if err := r.clients.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return &c, nil
}

func (r *ClientRepository) ListClients(ctx context.Context, filter ports.ListClientsFilter) ([]*domain.Client, int64, error) {
	query := bson.M{}
	if filter.ConsultantID != "" {
		query["consultant_id"] = filter.ConsultantID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		// Names live on the applicant documents; the root only carries codes.
		query["client_code"] = primitive.Regex{Pattern: filter.Search, Options: "i"}
	}

	total, err := r.clients.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "entry_date", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.clients.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer cur.Close(ctx)

	var clients []*domain.Client
	for cur.Next(ctx) {
		var c domain.Client
		if err := cur.Decode(&c); err != nil {
			return nil, 0, fmt.Errorf("decode client: %w", err)
		}
		clients = append(clients, &c)
	}
	return clients, total, cur.Err()
}

func (r *ClientRepository) DeleteClient(ctx context.Context, id string) error {
	res, err := r.clients.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// --- Applicant ---

func (r *ClientRepository) CreateApplicant(ctx context.Context, a *domain.Applicant) (string, error) {
	a.ID = newID()
	if _, err := r.applicants.InsertOne(ctx, a); err != nil {
		return "", fmt.Errorf("insert applicant: %w", err)
	}
	return a.ID, nil
}

func (r *ClientRepository) UpdateApplicant(ctx context.Context, a *domain.Applicant) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := r.applicants.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) FindApplicant(ctx context.Context, id string) (*domain.Applicant, error) {
	var a domain.Applicant
	if err := r.applicants.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find applicant: %w", err)
	}
	return &a, nil
}

func (r *ClientRepository) DeleteApplicantsByClient(ctx context.Context, clientID string) error {
	_, err := r.applicants.DeleteMany(ctx, bson.M{"client_id": clientID})
	return err
}

// --- CoApplicant ---

func (r *ClientRepository) CreateCoApplicant(ctx context.Context, a *domain.CoApplicant) (string, error) {
	a.ID = newID()
	if _, err := r.coApplicants.InsertOne(ctx, a); err != nil {
		return "", fmt.Errorf("insert co-applicant: %w", err)
	}
	return a.ID, nil
}

func (r *ClientRepository) UpdateCoApplicant(ctx context.Context, a *domain.CoApplicant) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := r.coApplicants.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return fmt.Errorf("update co-applicant: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) FindCoApplicant(ctx context.Context, id string) (*domain.CoApplicant, error) {
	var a domain.CoApplicant
	if err := r.coApplicants.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find co-applicant: %w", err)
	}
	return &a, nil
}

func (r *ClientRepository) DeleteCoApplicantsByClient(ctx context.Context, clientID string) error {
	_, err := r.coApplicants.DeleteMany(ctx, bson.M{"client_id": clientID})
	return err
}

// --- Liability ---

func (r *ClientRepository) CreateLiability(ctx context.Context, l *domain.Liability) (string, error) {
	l.ID = newID()
	if _, err := r.liabilities.InsertOne(ctx, l); err != nil {
		return "", fmt.Errorf("insert liability: %w", err)
	}
	return l.ID, nil
}

func (r *ClientRepository) FindLiabilitiesByClient(ctx context.Context, clientID string) ([]domain.Liability, error) {
	return findByClient[domain.Liability](ctx, r.liabilities, clientID)
}

func (r *ClientRepository) DeleteLiabilitiesByClient(ctx context.Context, clientID string) error {
	_, err := r.liabilities.DeleteMany(ctx, bson.M{"client_id": clientID})
	return err
}

// --- Mortgage ---

func (r *ClientRepository) CreateMortgage(ctx context.Context, m *domain.Mortgage) (string, error) {
	m.ID = newID()
	if _, err := r.mortgages.InsertOne(ctx, m); err != nil {
		return "", fmt.Errorf("insert mortgage: %w", err)
	}
	return m.ID, nil
}

func (r *ClientRepository) FindMortgagesByClient(ctx context.Context, clientID string) ([]domain.Mortgage, error) {
	return findByClient[domain.Mortgage](ctx, r.mortgages, clientID)
}

func (r *ClientRepository) DeleteMortgagesByClient(ctx context.Context, clientID string) error {
	_, err := r.mortgages.DeleteMany(ctx, bson.M{"client_id": clientID})
	return err
}

// --- Underwriting ---

func (r *ClientRepository) CreateUnderwriting(ctx context.Context, u *domain.Underwriting) (string, error) {
	u.ID = newID()
	if _, err := r.underwritings.InsertOne(ctx, u); err != nil {
		return "", fmt.Errorf("insert underwriting: %w", err)
	}
	return u.ID, nil
}

func (r *ClientRepository) UpdateUnderwriting(ctx context.Context, u *domain.Underwriting) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := r.underwritings.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return fmt.Errorf("update underwriting: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) FindUnderwriting(ctx context.Context, id string) (*domain.Underwriting, error) {
	var u domain.Underwriting
	if err := r.underwritings.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find underwriting: %w", err)
	}
	return &u, nil
}

func (r *ClientRepository) DeleteUnderwritingsByClient(ctx context.Context, clientID string) error {
	_, err := r.underwritings.DeleteMany(ctx, bson.M{"client_id": clientID})
	return err
}

// --- Driver ---

func (r *ClientRepository) CreateDriver(ctx context.Context, d *domain.Driver) (string, error) {
	d.ID = newID()
	if _, err := r.drivers.InsertOne(ctx, d); err != nil {
		return "", fmt.Errorf("insert driver: %w", err)
	}
	return d.ID, nil
}

func (r *ClientRepository) FindDriversByClient(ctx context.Context, clientID string) ([]domain.Driver, error) {
	return findByClient[domain.Driver](ctx, r.drivers, clientID)
}

func (r *ClientRepository) DeleteDriversByClient(ctx context.Context, clientID string) error {
	_, err := r.drivers.DeleteMany(ctx, bson.M{"client_id": clientID})
	return err
}

// findByClient loads every document of a child collection for one client.
func findByClient[T any](ctx context.Context, coll *mongo.Collection, clientID string) ([]T, error) {
	cur, err := coll.Find(ctx, bson.M{"client_id": clientID})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	defer cur.Close(ctx)

	var items []T
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return items, nil
}

// EnsureIndexes creates the lookup indexes for the aggregate collections.
func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.clients.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "consultant_id", Value: 1}}},
	}); err != nil {
		return err
	}

	byClient := []mongo.IndexModel{{Keys: bson.D{{Key: "client_id", Value: 1}}}}
	for _, coll := range []*mongo.Collection{r.applicants, r.coApplicants, r.liabilities, r.mortgages, r.underwritings, r.drivers} {
		if _, err := coll.Indexes().CreateMany(ctx, byClient); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.ClientRepository = (*ClientRepository)(nil)
