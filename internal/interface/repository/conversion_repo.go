package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConversionRepository implements ConversionRepository
type MongoConversionRepository struct {
	collection *mongo.Collection
}

// NewMongoConversionRepository creates a new conversion repository
func NewMongoConversionRepository(ctx context.Context, db *mongo.Database) (repository.ConversionRepository, error) {
	collection := db.Collection("conversions")

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"createdAt": -1}},
		{Keys: bson.D{{Key: "suspicious", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.M{"sourceRef": 1}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create conversion indexes: %w", err)
	}

	return &MongoConversionRepository{
		collection: collection,
	}, nil
}

// Save inserts a new conversion record and fills in its ID
func (r *MongoConversionRepository) Save(ctx context.Context, record *entity.ConversionRecord) error {
	if record.ID == "" {
		record.ID = primitive.NewObjectID().Hex()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to save conversion record: %w", err)
	}
	return nil
}

// FindByID finds a conversion record by ID
func (r *MongoConversionRepository) FindByID(ctx context.Context, id string) (*entity.ConversionRecord, error) {
	var record entity.ConversionRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindRecent lists the newest records, optionally only suspicious ones
func (r *MongoConversionRepository) FindRecent(ctx context.Context, suspiciousOnly bool, limit int) ([]*entity.ConversionRecord, error) {
	filter := bson.M{}
	if suspiciousOnly {
		filter["suspicious"] = true
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*entity.ConversionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode conversions: %w", err)
	}
	return records, nil
}
