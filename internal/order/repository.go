package order

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marmitaria/internal/models"
)

const ordersCollection = "orders"

// Repository stores confirmed orders in MongoDB.
type Repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection(ordersCollection)}
}

// Save upserts by order id so a repeated save of the same order is harmless.
func (r *Repository) Save(ctx context.Context, order models.OrderDetails) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": order.ID}, order, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save order %s: %w", order.ID, err)
	}
	return nil
}

// List returns one page of orders, newest first, with the total count.
func (r *Repository) List(ctx context.Context, page, limit int64) ([]models.OrderDetails, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	orders := []models.OrderDetails{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *Repository) Get(ctx context.Context, id string) (models.OrderDetails, error) {
	var order models.OrderDetails
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.OrderDetails{}, ErrOrderNotFound
	}
	return order, err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}
