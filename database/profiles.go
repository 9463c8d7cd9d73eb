package database

import (
	"context"
	"fmt"
	"time"

	"devconnector/models"
	"devconnector/profile"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProfileStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewProfileStore(d *DB) *ProfileStore {
	return &ProfileStore{coll: d.Profiles, now: time.Now}
}

func (s *ProfileStore) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	var p models.Profile
	if err := s.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *ProfileStore) List(ctx context.Context) ([]models.Profile, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find profiles: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := []models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

// Upsert creates the profile of userID from fields, or merges fields into
// the existing one, in a single round trip. Losing a first-time race against
// another upsert for the same user surfaces as ErrDuplicate.
func (s *ProfileStore) Upsert(ctx context.Context, userID primitive.ObjectID, fields profile.Fields) (*models.Profile, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var p models.Profile
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"user": userID}, fields.Update(userID, s.now()), opts).Decode(&p)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", translate(err))
	}
	return &p, nil
}

// Save replaces the stored profile with p.
func (s *ProfileStore) Save(ctx context.Context, p *models.Profile) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("save profile: %w", translate(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProfileStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
