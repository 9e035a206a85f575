package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marmitaria/internal/models"
)

const (
	ingredientsCollection = "ingredients"
	extrasCollection      = "extras"
	sizesCollection       = "sizes"
	zonesCollection       = "zones"
)

var (
	ErrNotFound  = errors.New("catalog entry not found")
	ErrDuplicate = errors.New("catalog entry already exists")
)

// IngredientUpdate carries the fields an admin may change; nil means unchanged.
type IngredientUpdate struct {
	Name     *string
	Category *models.Category
	Active   *bool
}

type ExtraUpdate struct {
	Name   *string
	Price  *decimal.Decimal
	Active *bool
}

// Store persists the catalog in MongoDB. It never hands out live state:
// callers Load a fresh snapshot after mutating.
type Store struct {
	db *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Load reads every collection and validates the result with New.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	var data Data
	if err := s.findAll(ctx, ingredientsCollection, &data.Ingredients); err != nil {
		return nil, err
	}
	if err := s.findAll(ctx, extrasCollection, &data.Extras); err != nil {
		return nil, err
	}
	if err := s.findAll(ctx, sizesCollection, &data.SizePrices); err != nil {
		return nil, err
	}
	if err := s.findAll(ctx, zonesCollection, &data.Zones); err != nil {
		return nil, err
	}
	return New(data)
}

func (s *Store) findAll(ctx context.Context, collection string, out interface{}) error {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

// Seed fills each empty collection from data. Collections that already hold
// documents are left alone so admin edits survive restarts.
func (s *Store) Seed(ctx context.Context, data Data) (int, error) {
	inserted := 0
	seeds := []struct {
		collection string
		docs       []interface{}
	}{
		{ingredientsCollection, toDocs(data.Ingredients)},
		{extrasCollection, toDocs(data.Extras)},
		{sizesCollection, toDocs(data.SizePrices)},
		{zonesCollection, toDocs(data.Zones)},
	}

	for _, seed := range seeds {
		if len(seed.docs) == 0 {
			continue
		}
		coll := s.db.Collection(seed.collection)
		count, err := coll.CountDocuments(ctx, bson.M{})
		if err != nil {
			return inserted, fmt.Errorf("count %s: %w", seed.collection, err)
		}
		if count > 0 {
			continue
		}
		res, err := coll.InsertMany(ctx, seed.docs)
		if err != nil {
			return inserted, fmt.Errorf("seed %s: %w", seed.collection, err)
		}
		inserted += len(res.InsertedIDs)
	}
	return inserted, nil
}

func toDocs[T any](items []T) []interface{} {
	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	return docs
}

func (s *Store) CreateIngredient(ctx context.Context, ing models.Ingredient) (models.Ingredient, error) {
	ing.ID = strings.TrimSpace(ing.ID)
	ing.Name = strings.TrimSpace(ing.Name)
	if ing.ID == "" || ing.Name == "" {
		return models.Ingredient{}, fmt.Errorf("%w: id and name are required", ErrInconsistent)
	}
	if !ing.Category.Valid() {
		return models.Ingredient{}, fmt.Errorf("%w: unknown category %q", ErrInconsistent, ing.Category)
	}

	count, err := s.db.Collection(ingredientsCollection).CountDocuments(ctx, bson.M{"id": ing.ID})
	if err != nil {
		return models.Ingredient{}, err
	}
	if count > 0 {
		return models.Ingredient{}, ErrDuplicate
	}

	if _, err := s.db.Collection(ingredientsCollection).InsertOne(ctx, ing); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Ingredient{}, ErrDuplicate
		}
		return models.Ingredient{}, err
	}
	return ing, nil
}

func (s *Store) UpdateIngredient(ctx context.Context, id string, upd IngredientUpdate) (models.Ingredient, error) {
	set := bson.M{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return models.Ingredient{}, fmt.Errorf("%w: name cannot be empty", ErrInconsistent)
		}
		set["name"] = name
	}
	if upd.Category != nil {
		if !upd.Category.Valid() {
			return models.Ingredient{}, fmt.Errorf("%w: unknown category %q", ErrInconsistent, *upd.Category)
		}
		set["category"] = *upd.Category
	}
	if upd.Active != nil {
		set["active"] = *upd.Active
	}
	if len(set) == 0 {
		return models.Ingredient{}, fmt.Errorf("%w: no fields to update", ErrInconsistent)
	}

	return s.updateIngredient(ctx, id, bson.M{"$set": set})
}

// ToggleIngredient flips the active flag in a single round trip.
func (s *Store) ToggleIngredient(ctx context.Context, id string) (models.Ingredient, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"active": bson.M{"$not": bson.A{"$active"}}}}},
	}
	return s.updateIngredient(ctx, id, pipeline)
}

func (s *Store) updateIngredient(ctx context.Context, id string, update interface{}) (models.Ingredient, error) {
	var updated models.Ingredient
	err := s.db.Collection(ingredientsCollection).
		FindOneAndUpdate(
			ctx,
			bson.M{"id": id},
			update,
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).
		Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Ingredient{}, ErrNotFound
	}
	if err != nil {
		return models.Ingredient{}, err
	}
	return updated, nil
}

func (s *Store) DeleteIngredient(ctx context.Context, id string) error {
	res, err := s.db.Collection(ingredientsCollection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateExtra(ctx context.Context, id string, upd ExtraUpdate) (models.ExtraItem, error) {
	set := bson.M{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return models.ExtraItem{}, fmt.Errorf("%w: name cannot be empty", ErrInconsistent)
		}
		set["name"] = name
	}
	if upd.Price != nil {
		if upd.Price.IsNegative() {
			return models.ExtraItem{}, fmt.Errorf("%w: price cannot be negative", ErrInconsistent)
		}
		set["price"] = *upd.Price
	}
	if upd.Active != nil {
		set["active"] = *upd.Active
	}
	if len(set) == 0 {
		return models.ExtraItem{}, fmt.Errorf("%w: no fields to update", ErrInconsistent)
	}

	var updated models.ExtraItem
	err := s.db.Collection(extrasCollection).
		FindOneAndUpdate(
			ctx,
			bson.M{"id": id},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).
		Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ExtraItem{}, ErrNotFound
	}
	if err != nil {
		return models.ExtraItem{}, err
	}
	return updated, nil
}
