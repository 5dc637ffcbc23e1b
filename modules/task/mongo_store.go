package task

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const collectionName = "tasks"

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore returns a store bound to the tasks collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the membership-query indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "creator_id", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_to_ids", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create task indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, t *Task) error {
	if _, err := s.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (s *MongoStore) ByID(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

func (s *MongoStore) Update(ctx context.Context, t *Task) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ForUser(ctx context.Context, userID string) ([]Task, error) {
	cursor, err := s.coll.Find(ctx, bson.M{
		"$or": bson.A{
			bson.M{"creator_id": userID},
			bson.M{"assigned_to_ids": userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}
