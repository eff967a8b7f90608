package db

import (
	"context"
	"fmt"
	"time"

	"github.com/arzan03/FitnexFitness/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names in the fitness database
const (
	FeaturedCollection     = "featured"
	TestimonialsCollection = "testimonials"
	SubscribersCollection  = "subscribers"
	UsersCollection        = "users"
	TrainersCollection     = "trainers"
	ClassesCollection      = "classes"
	ForumsCollection       = "forums"
	PaymentsCollection     = "payments"
	ChallengesCollection   = "challenges"
)

// Collection is the subset of *mongo.Collection the services rely on.
type Collection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Store hands out collections by name.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
}

// MongoStore is the process-wide store backed by a single client.
type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
}

// ConnectMongoDB initializes the database connection and verifies it with a ping.
func ConnectMongoDB(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).SetStrict(true).SetDeprecationErrors(true)
	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	logger.Get().Info("connected to MongoDB", zap.String("database", dbName))
	return &MongoStore{client: client, database: client.Database(dbName)}, nil
}

// Collection returns a MongoDB collection
func (s *MongoStore) Collection(name string) Collection {
	return s.database.Collection(name)
}

// Ping checks the deployment is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// EnsureIndexes creates the unique email index that makes user registration
// an atomic insert-if-absent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	users := s.database.Collection(UsersCollection)
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	return nil
}

// Disconnect releases the client. Safe to call on a nil store.
func (s *MongoStore) Disconnect(ctx context.Context) {
	if s == nil || s.client == nil {
		return
	}
	if err := s.client.Disconnect(ctx); err != nil {
		logger.Get().Error("failed to disconnect from MongoDB", zap.Error(err))
		return
	}
	logger.Get().Info("disconnected from MongoDB")
}
