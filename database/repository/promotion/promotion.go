// File: database/repository/promotion/promotion.go
package promotionRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no promotion matches the code.
	ErrNotFound = errors.New("promotion not found")
	// ErrUsageExhausted is returned when the usage counter cannot be
	// incremented without breaking the usage limit.
	ErrUsageExhausted = errors.New("promotion usage limit reached")
)

// PromotionRepository is the persistence contract for discount codes.
// Usage accounting is a conditional counter so concurrent redemptions
// cannot overshoot the limit.
type PromotionRepository interface {
	Create(ctx context.Context, p *models.Promotion) error
	GetByCode(ctx context.Context, code string) (*models.Promotion, error)
	IncrementUsage(ctx context.Context, id string) error
	DecrementUsage(ctx context.Context, id string) error
}

// MongoPromotionRepo implements PromotionRepository using MongoDB.
type MongoPromotionRepo struct {
	coll *mongo.Collection
}

// NewMongoPromotionRepo creates a new instance of PromotionRepository using MongoDB.
func NewMongoPromotionRepo() PromotionRepository {
	coll := database.DB().Collection("promotions")
	repo := &MongoPromotionRepo{coll: coll}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_code")},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		fmt.Printf("failed to create promotion indexes: %v\n", err)
	}
	return repo
}

func (r *MongoPromotionRepo) Create(ctx context.Context, p *models.Promotion) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert promotion: %w", err)
	}
	return nil
}

func (r *MongoPromotionRepo) GetByCode(ctx context.Context, code string) (*models.Promotion, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	code = strings.ToUpper(strings.TrimSpace(code))
	var p models.Promotion
	if err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch promotion %s: %w", code, err)
	}
	return &p, nil
}

// IncrementUsage bumps usedCount only while it stays under the usage
// limit. A zero limit means unlimited.
func (r *MongoPromotionRepo) IncrementUsage(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id": id,
		"$or": bson.A{
			bson.M{"usageLimit": bson.M{"$lte": 0}},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$usedCount", "$usageLimit"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"usedCount": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to increment promotion usage: %w", err)
	}
	if res.MatchedCount == 0 {
		var p models.Promotion
		if getErr := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p); errors.Is(getErr, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return ErrUsageExhausted
	}
	return nil
}

// DecrementUsage backs out a provisional redemption, clamped at zero.
func (r *MongoPromotionRepo) DecrementUsage(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "usedCount", Value: bson.D{{Key: "$max", Value: bson.A{
				0,
				bson.D{{Key: "$subtract", Value: bson.A{"$usedCount", 1}}},
			}}}},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to decrement promotion usage: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
