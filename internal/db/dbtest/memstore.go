// Package dbtest provides an in-memory db.Store for tests. It understands the
// subset of MongoDB the services use: equality and $in filters, $set,
// $unset and $setOnInsert updates, upserts and unique fields.
package dbtest

import (
	"context"
	"reflect"
	"sync"

	"github.com/arzan03/FitnexFitness/internal/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is a set of in-memory collections.
type Store struct {
	mu      sync.Mutex
	colls   map[string]*Collection
	PingErr error
}

func NewStore() *Store {
	return &Store{colls: map[string]*Collection{}}
}

func (s *Store) Collection(name string) db.Collection {
	return s.Coll(name)
}

// Coll returns the concrete collection, creating it on first use.
func (s *Store) Coll(name string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.colls[name]
	if !ok {
		c = &Collection{}
		if name == db.UsersCollection {
			c.unique = []string{"email"}
		}
		s.colls[name] = c
	}
	return c
}

func (s *Store) Ping(ctx context.Context) error {
	return s.PingErr
}

// Collection holds documents in insertion order.
type Collection struct {
	mu     sync.Mutex
	docs   []bson.M
	unique []string

	// Err, when set, is returned by every operation.
	Err error
	// UpdateErr, when set, is returned by UpdateOne only.
	UpdateErr error
}

// Seed inserts documents directly and returns their ids.
func (c *Collection) Seed(docs ...interface{}) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		res, err := c.InsertOne(context.Background(), d)
		if err != nil {
			panic(err)
		}
		ids = append(ids, res.InsertedID.(primitive.ObjectID))
	}
	return ids
}

// Docs returns a copy of every stored document.
func (c *Collection) Docs() []bson.M {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]bson.M, 0, len(c.docs))
	for _, d := range c.docs {
		out = append(out, clone(d))
	}
	return out
}

func (c *Collection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	f := toM(filter)
	c.mu.Lock()
	var found []interface{}
	for _, d := range c.docs {
		if matches(d, f) {
			found = append(found, clone(d))
		}
	}
	c.mu.Unlock()
	return mongo.NewCursorFromDocuments(found, nil, nil)
}

func (c *Collection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	if c.Err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, c.Err, nil)
	}
	f := toM(filter)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.docs {
		if matches(d, f) {
			return mongo.NewSingleResultFromDocument(clone(d), nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (c *Collection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	doc := toM(document)
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = primitive.NewObjectID()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkUnique(doc, -1); err != nil {
		return nil, err
	}
	c.docs = append(c.docs, doc)
	return &mongo.InsertOneResult{InsertedID: doc["_id"]}, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if c.UpdateErr != nil {
		return nil, c.UpdateErr
	}
	f := toM(filter)
	u := toM(update)
	upsert := false
	for _, o := range opts {
		if o != nil && o.Upsert != nil {
			upsert = *o.Upsert
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		if !matches(d, f) {
			continue
		}
		updated := clone(d)
		apply(updated, u, false)
		if err := c.checkUnique(updated, i); err != nil {
			return nil, err
		}
		modified := int64(0)
		if !reflect.DeepEqual(updated, d) {
			modified = 1
		}
		c.docs[i] = updated
		return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: modified}, nil
	}
	if !upsert {
		return &mongo.UpdateResult{}, nil
	}

	doc := bson.M{}
	for k, v := range f {
		if _, isOp := asMap(v); !isOp {
			doc[k] = v
		}
	}
	apply(doc, u, true)
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = primitive.NewObjectID()
	}
	if err := c.checkUnique(doc, -1); err != nil {
		return nil, err
	}
	c.docs = append(c.docs, doc)
	return &mongo.UpdateResult{UpsertedCount: 1, UpsertedID: doc["_id"]}, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return c.delete(filter, 1)
}

func (c *Collection) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return c.delete(filter, -1)
}

func (c *Collection) delete(filter interface{}, limit int) (*mongo.DeleteResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	f := toM(filter)
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.docs[:0]
	var n int64
	for _, d := range c.docs {
		if (limit < 0 || n < int64(limit)) && matches(d, f) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	c.docs = kept
	return &mongo.DeleteResult{DeletedCount: n}, nil
}

// DuplicateKeyError is the error the server reports for a unique index violation.
func DuplicateKeyError(field string) error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{
		Code:    11000,
		Message: "E11000 duplicate key error collection index: " + field,
	}}}
}

// checkUnique reports a duplicate key against every stored document except
// the one at index self.
func (c *Collection) checkUnique(doc bson.M, self int) error {
	for _, field := range c.unique {
		v, ok := doc[field]
		if !ok {
			continue
		}
		for i, d := range c.docs {
			if i != self && reflect.DeepEqual(d[field], v) {
				return DuplicateKeyError(field)
			}
		}
	}
	return nil
}

func apply(doc, update bson.M, inserting bool) {
	if set, ok := asMap(update["$set"]); ok {
		for k, v := range set {
			doc[k] = v
		}
	}
	if inserting {
		if set, ok := asMap(update["$setOnInsert"]); ok {
			for k, v := range set {
				doc[k] = v
			}
		}
	}
	if unset, ok := asMap(update["$unset"]); ok {
		for k := range unset {
			delete(doc, k)
		}
	}
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		got, present := doc[k]
		if op, ok := asMap(want); ok {
			if in, ok := op["$in"]; ok {
				if !present || !contains(in, got) {
					return false
				}
				continue
			}
		}
		if !present || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func contains(list interface{}, v interface{}) bool {
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if reflect.DeepEqual(rv.Index(i).Interface(), v) {
			return true
		}
	}
	return false
}

func asMap(v interface{}) (bson.M, bool) {
	switch t := v.(type) {
	case bson.M:
		return t, true
	case primitive.D:
		return t.Map(), true
	default:
		return nil, false
	}
}

// toM round-trips any document through BSON so structs, maps and option tags
// are normalised the same way the real driver would see them.
func toM(v interface{}) bson.M {
	if v == nil {
		return bson.M{}
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}

func clone(d bson.M) bson.M {
	return toM(d)
}
