package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/arzan03/FitnexFitness/internal/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// InsertAck mirrors the store's insert acknowledgment.
type InsertAck struct {
	Acknowledged bool        `json:"acknowledged"`
	InsertedID   interface{} `json:"insertedId"`
}

// UpdateAck mirrors the store's update acknowledgment.
type UpdateAck struct {
	Acknowledged  bool        `json:"acknowledged"`
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId"`
}

// DeleteAck mirrors the store's delete acknowledgment.
type DeleteAck struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

func insertAck(r *mongo.InsertOneResult) *InsertAck {
	return &InsertAck{Acknowledged: true, InsertedID: r.InsertedID}
}

func updateAck(r *mongo.UpdateResult) *UpdateAck {
	return &UpdateAck{
		Acknowledged:  true,
		MatchedCount:  r.MatchedCount,
		ModifiedCount: r.ModifiedCount,
		UpsertedCount: r.UpsertedCount,
		UpsertedID:    r.UpsertedID,
	}
}

func deleteAck(r *mongo.DeleteResult) *DeleteAck {
	return &DeleteAck{Acknowledged: true, DeletedCount: r.DeletedCount}
}

// ParseObjectID converts a path id, reporting malformed ids as bad requests.
func ParseObjectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, ErrBadRequest)
	}
	return objID, nil
}

// ResourceService performs the single-document operations shared by every collection.
type ResourceService struct {
	store db.Store
}

func NewResourceService(store db.Store) *ResourceService {
	return &ResourceService{store: store}
}

// List returns every document in natural order; never nil.
func (s *ResourceService) List(ctx context.Context, collection string) ([]bson.M, error) {
	return s.find(ctx, collection, bson.M{})
}

// ListBy returns every document matching an equality filter.
func (s *ResourceService) ListBy(ctx context.Context, collection, field string, value interface{}) ([]bson.M, error) {
	return s.find(ctx, collection, bson.M{field: value})
}

func (s *ResourceService) find(ctx context.Context, collection string, filter bson.M) ([]bson.M, error) {
	cursor, err := s.store.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: %v: %w", collection, err, ErrStore)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", collection, err, ErrStore)
	}
	return docs, nil
}

// Create inserts the document as given.
func (s *ResourceService) Create(ctx context.Context, collection string, doc interface{}) (*InsertAck, error) {
	res, err := s.store.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %v: %w", collection, err, ErrStore)
	}
	return insertAck(res), nil
}

// GetBy returns the matching document or nil when absent.
func (s *ResourceService) GetBy(ctx context.Context, collection, field string, value interface{}) (bson.M, error) {
	var doc bson.M
	err := s.store.Collection(collection).FindOne(ctx, bson.M{field: value}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find one %s: %v: %w", collection, err, ErrStore)
	}
	return doc, nil
}

// UpdateBy applies a $set to the document matching field == value.
func (s *ResourceService) UpdateBy(ctx context.Context, collection, field string, value interface{}, set interface{}) (*UpdateAck, error) {
	res, err := s.store.Collection(collection).UpdateOne(ctx, bson.M{field: value}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update %s: %v: %w", collection, err, ErrStore)
	}
	return updateAck(res), nil
}

// DeleteByID removes one document by its ObjectID hex string.
func (s *ResourceService) DeleteByID(ctx context.Context, collection, id string) (*DeleteAck, error) {
	objID, err := ParseObjectID(id)
	if err != nil {
		return nil, err
	}
	res, err := s.store.Collection(collection).DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return nil, fmt.Errorf("delete %s: %v: %w", collection, err, ErrStore)
	}
	return deleteAck(res), nil
}
