// File: database/repository/policy/policy.go
package policyRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no policy matches the lookup.
var ErrNotFound = errors.New("policy not found")

// PolicyRepository is the persistence contract for cancellation and
// no-show policies. The newest active version of each type wins.
type PolicyRepository interface {
	Create(ctx context.Context, p *models.Policy) error
	GetByID(ctx context.Context, id string) (*models.Policy, error)
	GetActive(ctx context.Context, typ models.PolicyType) (*models.Policy, error)
	List(ctx context.Context, typ models.PolicyType) ([]models.Policy, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// MongoPolicyRepo implements PolicyRepository using MongoDB.
type MongoPolicyRepo struct {
	coll *mongo.Collection
}

// NewMongoPolicyRepo creates a new instance of PolicyRepository using MongoDB.
func NewMongoPolicyRepo() PolicyRepository {
	coll := database.DB().Collection("policies")
	repo := &MongoPolicyRepo{coll: coll}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "isActive", Value: 1}}, Options: options.Index().SetName("type_active_idx")},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		fmt.Printf("failed to create policy indexes: %v\n", err)
	}
	return repo
}

func (r *MongoPolicyRepo) Create(ctx context.Context, p *models.Policy) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert policy: %w", err)
	}
	return nil
}

func (r *MongoPolicyRepo) GetByID(ctx context.Context, id string) (*models.Policy, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Policy
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch policy with id %s: %w", id, err)
	}
	return &p, nil
}

// GetActive returns the highest-versioned active policy of the type.
func (r *MongoPolicyRepo) GetActive(ctx context.Context, typ models.PolicyType) (*models.Policy, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"type": typ, "isActive": true}
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})

	var p models.Policy
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch active %s policy: %w", typ, err)
	}
	return &p, nil
}

func (r *MongoPolicyRepo) List(ctx context.Context, typ models.PolicyType) ([]models.Policy, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if typ != "" {
		filter["type"] = typ
	}
	opts := options.Find().SetSort(bson.D{{Key: "version", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer cursor.Close(ctx)

	var policies []models.Policy
	if err := cursor.All(ctx, &policies); err != nil {
		return nil, fmt.Errorf("failed to decode policies: %w", err)
	}
	return policies, nil
}

func (r *MongoPolicyRepo) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update policy %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
