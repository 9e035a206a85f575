package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func ensureIndex(db *mongo.Database, log *zap.Logger, collection string, model mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	name := *model.Options.Name
	log.Debug("creating index", zap.String("collection", collection), zap.String("index", name))
	if _, err := db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
		log.Warn("index error", zap.String("collection", collection), zap.String("index", name), zap.Error(err))
		return err
	}
	log.Info("index ready", zap.String("collection", collection), zap.String("index", name))
	return nil
}

// EnsureCatalogIndexes makes catalog ids unique per collection, which is
// what lets the store turn duplicate inserts into ErrDuplicate.
func EnsureCatalogIndexes(db *mongo.Database, log *zap.Logger) error {
	unique := []struct {
		collection, key string
	}{
		{"ingredients", "id"},
		{"extras", "id"},
		{"zones", "id"},
		{"sizes", "size"},
	}
	for _, u := range unique {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: u.key, Value: 1}},
			Options: options.Index().SetName(u.key + "_unique").SetUnique(true),
		}
		if err := ensureIndex(db, log, u.collection, model); err != nil {
			return err
		}
	}
	return nil
}

func EnsureOrderIndexes(db *mongo.Database, log *zap.Logger) error {
	createdAt := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	}
	if err := ensureIndex(db, log, "orders", createdAt); err != nil {
		return err
	}
	session := mongo.IndexModel{
		Keys:    bson.D{{Key: "sessionId", Value: 1}},
		Options: options.Index().SetName("sessionId_index"),
	}
	return ensureIndex(db, log, "orders", session)
}

func EnsureAdminIndexes(db *mongo.Database, log *zap.Logger) error {
	email := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	}
	return ensureIndex(db, log, "admins", email)
}
