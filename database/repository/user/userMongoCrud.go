// File: database/repository/user/userMongoCrud.go
package userRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new user record.
func (r *MongoUserRepo) Create(ctx context.Context, u *models.User) error {
	dbCtx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(dbCtx, u); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by its unique ID.
func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	dbCtx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(dbCtx, bson.M{"id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by its email.
func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	dbCtx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(dbCtx, bson.M{"email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user with email %s: %w", email, err)
	}
	return &user, nil
}

// IncrementNoShowCount bumps the customer's no-show tally and returns the
// updated record.
func (r *MongoUserRepo) IncrementNoShowCount(ctx context.Context, id string) (*models.User, error) {
	dbCtx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"noShowCount": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	if err := r.coll.FindOneAndUpdate(dbCtx, bson.M{"id": id}, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to increment no-show count for %s: %w", id, err)
	}
	return &user, nil
}
