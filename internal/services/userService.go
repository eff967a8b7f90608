package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/FitnexFitness/internal/db"
	"github.com/arzan03/FitnexFitness/internal/logger"
	"github.com/arzan03/FitnexFitness/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// UserService owns the users collection and trainer promotions.
type UserService struct {
	store db.Store
	now   func() time.Time
}

func NewUserService(store db.Store) *UserService {
	return &UserService{store: store, now: time.Now}
}

func (s *UserService) users() db.Collection {
	return s.store.Collection(db.UsersCollection)
}

// UpsertOrFetch registers a user the first time an email is seen. For an
// existing email the stored record is returned untouched so that role and
// payment fields set by administrators survive later logins.
//
// The insert is a single conditional upsert guarded by the unique email
// index, so concurrent identical registrations cannot create duplicates.
func (s *UserService) UpsertOrFetch(ctx context.Context, email string, profile models.Document) (interface{}, error) {
	doc := profile.Without("_id", "email", "timestamp")
	if role, _ := doc.String("role"); role == models.RoleAdmin {
		logger.Get().Warn("ignoring self-assigned admin role", zap.String("email", email))
		delete(doc, "role")
	}
	doc["email"] = email
	doc["timestamp"] = s.now().UnixMilli()

	res, err := s.users().UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	switch {
	case mongo.IsDuplicateKeyError(err):
		logger.Get().Debug("concurrent registration lost the race", zap.String("email", email))
	case err != nil:
		return nil, fmt.Errorf("upsert user: %v: %w", err, ErrStore)
	case res.UpsertedCount > 0:
		return updateAck(res), nil
	}

	existing, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	logger.Get().Debug("user already registered", zap.String("email", email))
	return existing, nil
}

// GetByEmail returns the stored user document or nil.
func (s *UserService) GetByEmail(ctx context.Context, email string) (bson.M, error) {
	var doc bson.M
	err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %v: %w", err, ErrStore)
	}
	return doc, nil
}

// RoleOf returns the stored role for an email, or the member role when unknown.
func (s *UserService) RoleOf(ctx context.Context, email string) (string, error) {
	var user models.User
	err := s.users().FindOne(ctx, bson.M{"email": email}, options.FindOne().SetProjection(bson.M{"role": 1})).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RoleMember, nil
	}
	if err != nil {
		return "", fmt.Errorf("find user role: %v: %w", err, ErrStore)
	}
	return user.Role, nil
}

// UpdateProfile sets the posted fields on the user with the given id. Role
// and payment only change through promotion and demotion.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update models.Document) (*UpdateAck, error) {
	objID, err := ParseObjectID(id)
	if err != nil {
		return nil, err
	}
	fields := update.Without("_id", "role", "payment")
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", ErrBadRequest)
	}
	res, err := s.users().UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": fields})
	if mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("email already registered: %w", ErrBadRequest)
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %v: %w", err, ErrStore)
	}
	return updateAck(res), nil
}

var promotion = bson.M{"$set": bson.M{"role": models.RoleTrainer, "payment": models.PaymentPending}}

// PromoteByEmail makes a registered user a trainer awaiting payment.
func (s *UserService) PromoteByEmail(ctx context.Context, email string) (*UpdateAck, error) {
	res, err := s.users().UpdateOne(ctx, bson.M{"email": email}, promotion)
	if err != nil {
		return nil, fmt.Errorf("promote user: %v: %w", err, ErrStore)
	}
	return updateAck(res), nil
}

// PromoteApplication marks a trainer application as accepted.
func (s *UserService) PromoteApplication(ctx context.Context, id string) (*UpdateAck, error) {
	objID, err := ParseObjectID(id)
	if err != nil {
		return nil, err
	}
	res, err := s.store.Collection(db.TrainersCollection).UpdateOne(ctx, bson.M{"_id": objID}, promotion)
	if err != nil {
		return nil, fmt.Errorf("promote application: %v: %w", err, ErrStore)
	}
	return updateAck(res), nil
}

// DemoteByEmail returns a trainer to the member role and clears the payment state.
func (s *UserService) DemoteByEmail(ctx context.Context, email string) (*UpdateAck, error) {
	res, err := s.users().UpdateOne(ctx, bson.M{"email": email}, bson.M{"$unset": bson.M{"role": "", "payment": ""}})
	if err != nil {
		return nil, fmt.Errorf("demote user: %v: %w", err, ErrStore)
	}
	return updateAck(res), nil
}
