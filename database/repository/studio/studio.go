// File: database/repository/studio/studio.go
package studioRepo

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

// ErrNotFound is returned when no studio matches the given id.
var ErrNotFound = errors.New("studio not found")

// StudioRepository is the persistence contract for studio rooms.
type StudioRepository interface {
	Create(ctx context.Context, s *models.Studio) error
	GetByID(ctx context.Context, id string) (*models.Studio, error)
	List(ctx context.Context) ([]models.Studio, error)
	UpdateStatus(ctx context.Context, id string, status models.StudioStatus) error
}

// MongoStudioRepo implements StudioRepository using MongoDB.
type MongoStudioRepo struct {
	coll *mongo.Collection
}

// NewMongoStudioRepo creates a new instance of StudioRepository using MongoDB.
func NewMongoStudioRepo() StudioRepository {
	coll := database.DB().Collection("studios")
	repo := &MongoStudioRepo{coll: coll}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("status_idx")},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		fmt.Printf("failed to create studio indexes: %v\n", err)
	}
	return repo
}

func (r *MongoStudioRepo) Create(ctx context.Context, s *models.Studio) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to insert studio: %w", err)
	}
	return nil
}

func (r *MongoStudioRepo) GetByID(ctx context.Context, id string) (*models.Studio, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.Studio
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch studio with id %s: %w", id, err)
	}
	return &s, nil
}

func (r *MongoStudioRepo) List(ctx context.Context) ([]models.Studio, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list studios: %w", err)
	}
	defer cursor.Close(ctx)

	var studios []models.Studio
	if err := cursor.All(ctx, &studios); err != nil {
		return nil, fmt.Errorf("failed to decode studios: %w", err)
	}
	return studios, nil
}

func (r *MongoStudioRepo) UpdateStatus(ctx context.Context, id string, status models.StudioStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update studio status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
