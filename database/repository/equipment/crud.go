// File: database/repository/equipment/crud.go
package equipmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *MongoEquipmentRepo) Create(ctx context.Context, eq *models.Equipment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, eq); err != nil {
		return fmt.Errorf("failed to insert equipment: %w", err)
	}
	return nil
}

func (r *MongoEquipmentRepo) GetByID(ctx context.Context, id string) (*models.Equipment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var eq models.Equipment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&eq); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch equipment with id %s: %w", id, err)
	}
	return &eq, nil
}

func (r *MongoEquipmentRepo) List(ctx context.Context) ([]models.Equipment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.Equipment
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode equipment: %w", err)
	}
	return items, nil
}

// Reserve is an atomic compare-and-decrement: it increments inUseQty only
// when derived availability still covers qty. MatchedCount zero means the
// stock ran out under us (or the id is unknown).
func (r *MongoEquipmentRepo) Reserve(ctx context.Context, id string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id": id,
		"$expr": bson.M{"$gte": bson.A{
			bson.M{"$subtract": bson.A{
				"$totalQty",
				bson.M{"$add": bson.A{"$maintenanceQty", "$inUseQty"}},
			}},
			qty,
		}},
	}
	update := bson.M{
		"$inc": bson.M{"inUseQty": qty},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve equipment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

// Release decrements inUseQty, clamped at zero so double compensation
// can never drive the counter negative.
func (r *MongoEquipmentRepo) Release(ctx context.Context, id string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "inUseQty", Value: bson.D{{Key: "$max", Value: bson.A{
				0,
				bson.D{{Key: "$subtract", Value: bson.A{"$inUseQty", qty}}},
			}}}},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to release equipment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMaintenance pins maintenanceQty, rejecting values that would exceed
// what is not currently in use.
func (r *MongoEquipmentRepo) SetMaintenance(ctx context.Context, id string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id": id,
		"$expr": bson.M{"$gte": bson.A{
			bson.M{"$subtract": bson.A{"$totalQty", "$inUseQty"}},
			qty,
		}},
	}
	update := bson.M{
		"$set": bson.M{"maintenanceQty": qty, "updatedAt": time.Now().UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set maintenance qty for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}
