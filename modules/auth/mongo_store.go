package auth

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const verificationCollection = "verifications"

// verificationDoc wraps a record with a composite _id so supersession is a
// single atomic ReplaceOne upsert rather than a racy delete-then-insert.
type verificationDoc struct {
	ID                 string `bson:"_id"` // email + ":" + purpose
	VerificationRecord `bson:",inline"`
}

func verificationKey(email string, purpose Purpose) string {
	return email + ":" + string(purpose)
}

// MongoVerificationStore implements VerificationStore on a MongoDB collection
// with a TTL index, so stale pending records are purged by the database even
// if the client never calls verify.
type MongoVerificationStore struct {
	coll *mongo.Collection
}

// NewMongoVerificationStore returns a store bound to the verifications collection.
func NewMongoVerificationStore(db *mongo.Database) *MongoVerificationStore {
	return &MongoVerificationStore{coll: db.Collection(verificationCollection)}
}

// EnsureIndexes creates the TTL index on expires_at. expireAfterSeconds=0
// makes Mongo delete each document as soon as its own expires_at passes.
func (s *MongoVerificationStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("failed to create ttl index: %w", err)
	}
	return nil
}

func (s *MongoVerificationStore) Upsert(ctx context.Context, rec *VerificationRecord) error {
	doc := verificationDoc{
		ID:                 verificationKey(rec.Email, rec.Purpose),
		VerificationRecord: *rec,
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert verification record: %w", err)
	}
	return nil
}

func (s *MongoVerificationStore) Find(ctx context.Context, email, code string, purpose Purpose) (*VerificationRecord, error) {
	return s.findOne(ctx, bson.M{
		"_id":      verificationKey(email, purpose),
		"otp_code": code,
	})
}

func (s *MongoVerificationStore) FindPending(ctx context.Context, email string, purpose Purpose) (*VerificationRecord, error) {
	return s.findOne(ctx, bson.M{"_id": verificationKey(email, purpose)})
}

func (s *MongoVerificationStore) Delete(ctx context.Context, email string, purpose Purpose) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": verificationKey(email, purpose)}); err != nil {
		return fmt.Errorf("failed to delete verification record: %w", err)
	}
	return nil
}

func (s *MongoVerificationStore) findOne(ctx context.Context, filter bson.M) (*VerificationRecord, error) {
	var doc verificationDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find verification record: %w", err)
	}
	return &doc.VerificationRecord, nil
}
