// File: database/repository/equipment/interface.go
package equipmentRepo

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

var (
	// ErrNotFound is returned when no equipment matches the given id.
	ErrNotFound = errors.New("equipment not found")
	// ErrInsufficientStock is returned when a conditional counter update
	// fails because availability would go negative.
	ErrInsufficientStock = errors.New("insufficient equipment stock")
)

// EquipmentRepository is the persistence contract for countable
// equipment. Counter mutations are conditional single-document updates,
// linearizable per equipment id.
type EquipmentRepository interface {
	Create(ctx context.Context, eq *models.Equipment) error
	GetByID(ctx context.Context, id string) (*models.Equipment, error)
	List(ctx context.Context) ([]models.Equipment, error)
	Reserve(ctx context.Context, id string, qty int) error
	Release(ctx context.Context, id string, qty int) error
	SetMaintenance(ctx context.Context, id string, qty int) error
}

// MongoEquipmentRepo implements EquipmentRepository using MongoDB.
type MongoEquipmentRepo struct {
	coll *mongo.Collection
}

// NewMongoEquipmentRepo creates a new instance of EquipmentRepository using MongoDB.
func NewMongoEquipmentRepo() EquipmentRepository {
	coll := database.DB().Collection("equipment")
	repo := &MongoEquipmentRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create equipment indexes: %v\n", err)
	}
	return repo
}

func (r *MongoEquipmentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName("name_idx")},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create equipment indexes: %w", err)
	}
	return nil
}
