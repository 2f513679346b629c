// internal/interface/repository/email_repo.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEmailRepository implements the EmailRepository interface
type MongoEmailRepository struct {
	collection *mongo.Collection
}

// NewMongoEmailRepository creates a new MongoDB email repository
func NewMongoEmailRepository(ctx context.Context, db *mongo.Database) (repository.EmailRepository, error) {
	collection := db.Collection("emailLogs")

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"emailId": 1},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.M{"receivedAt": -1},
		},
		// pending emails, oldest first
		{
			Keys: bson.D{
				{Key: "processStatus", Value: 1},
				{Key: "receivedAt", Value: 1},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create email indexes: %w", err)
	}

	return &MongoEmailRepository{
		collection: collection,
	}, nil
}

// Save saves an email to MongoDB
func (r *MongoEmailRepository) Save(ctx context.Context, email *entity.Email) error {
	if email.ProcessStatus == "" {
		email.ProcessStatus = entity.StatusPending
	}

	if _, err := r.collection.InsertOne(ctx, email); err != nil {
		return fmt.Errorf("failed to save email %s: %w", email.EmailID, err)
	}
	return nil
}

// FindUnprocessed finds unprocessed emails (PENDING status or empty)
func (r *MongoEmailRepository) FindUnprocessed(ctx context.Context, limit int) ([]*entity.Email, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"processStatus": ""},
			{"processStatus": entity.StatusPending},
			{"processStatus": bson.M{"$exists": false}},
		},
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "receivedAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find unprocessed emails: %w", err)
	}
	defer cursor.Close(ctx)

	var emails []*entity.Email
	if err := cursor.All(ctx, &emails); err != nil {
		return nil, fmt.Errorf("failed to decode unprocessed emails: %w", err)
	}

	return emails, nil
}

// ResetProcessingEmails moves emails stuck in PROCESSING for longer than
// staleAfter back to PENDING and returns how many were reset
func (r *MongoEmailRepository) ResetProcessingEmails(ctx context.Context, staleAfter time.Duration) (int64, error) {
	staleTime := time.Now().Add(-staleAfter)

	filter := bson.M{
		"processStatus": entity.StatusProcessing,
		"$or": []bson.M{
			{"processStartedAt": bson.M{"$lt": staleTime}},
			{"processStartedAt": bson.M{"$exists": false}},
		},
	}

	update := bson.M{
		"$set": bson.M{
			"processStatus": entity.StatusPending,
			"errorDetail":   "Reset from stale PROCESSING state",
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to reset stale emails: %w", err)
	}
	return result.ModifiedCount, nil
}

// GetLastEmail gets the most recently received email
func (r *MongoEmailRepository) GetLastEmail(ctx context.Context) (*entity.Email, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "receivedAt", Value: -1}})
	return r.findOne(ctx, bson.M{}, opts)
}

// findOne returns nil, nil when nothing matches
func (r *MongoEmailRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*entity.Email, error) {
	var email entity.Email
	err := r.collection.FindOne(ctx, filter, opts...).Decode(&email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

// FindByEmailIDs finds multiple emails by message IDs (batch operation)
func (r *MongoEmailRepository) FindByEmailIDs(ctx context.Context, emailIDs []string) (map[string]*entity.Email, error) {
	result := make(map[string]*entity.Email)
	if len(emailIDs) == 0 {
		return result, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"emailId": bson.M{"$in": emailIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var email entity.Email
		if err := cursor.Decode(&email); err != nil {
			continue
		}
		result[email.EmailID] = &email
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateStatusByEmailID sets the process status, stamping the start time
// when the email moves to PROCESSING
func (r *MongoEmailRepository) UpdateStatusByEmailID(ctx context.Context, emailID string, status string, startedAt time.Time) error {
	set := bson.M{"processStatus": status}
	if status == entity.StatusProcessing && !startedAt.IsZero() {
		set["processStartedAt"] = startedAt
	}
	return r.updateByEmailID(ctx, emailID, set, "update status")
}

// MarkAsProcessedByEmailID records the final status and extracted data
func (r *MongoEmailRepository) MarkAsProcessedByEmailID(ctx context.Context, emailID, status, processorType, errorDetail string, extractedData map[string]interface{}) error {
	set := bson.M{
		"processedAt":   time.Now(),
		"processStatus": status,
		"processorType": processorType,
	}
	if len(extractedData) > 0 {
		set["extractedData"] = extractedData
	}
	if errorDetail != "" {
		set["errorDetail"] = errorDetail
	}
	return r.updateByEmailID(ctx, emailID, set, "mark as processed")
}

// UpdateProcessStepsByEmailID stores handler progress
func (r *MongoEmailRepository) UpdateProcessStepsByEmailID(ctx context.Context, emailID string, steps entity.ProcessSteps) error {
	return r.updateByEmailID(ctx, emailID, bson.M{"processSteps": steps}, "update process steps")
}

func (r *MongoEmailRepository) updateByEmailID(ctx context.Context, emailID string, set bson.M, op string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"emailId": emailID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to %s: no document found with emailID: %s", op, emailID)
	}
	return nil
}
