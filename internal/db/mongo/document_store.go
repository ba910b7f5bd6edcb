// Package mongo implements the document store on MongoDB.
//
// Documents keep their fields at the top level with a string _id and a _rev counter used for
// optimistic concurrency in Mutate. Server timestamps are written with the $$NOW variable.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"Inkwell/internal/core/docstore"
)

const (
	fieldID  = "_id"
	fieldRev = "_rev"

	// maxMutateAttempts bounds optimistic retries before ErrConflict
	maxMutateAttempts = 5
)

// Connect opens a client and verifies it with a ping
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

type mongoDocumentStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// NewDocumentStore creates a docstore.Store over database dbName
func NewDocumentStore(client *mongo.Client, dbName string, logger *slog.Logger) docstore.Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &mongoDocumentStore{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}
}

// EnsureIndexes creates the indexes the blog queries rely on
func EnsureIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	_, err := db.Collection(docstore.CollectionPosts).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "titleLower", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}

	_, err = db.Collection(docstore.CollectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (s *mongoDocumentStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	fields, _, err := s.find(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return &docstore.Document{ID: id, Fields: fields}, nil
}

func (s *mongoDocumentStore) List(ctx context.Context, collection string, q docstore.Query) ([]*docstore.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	filter := buildFilter(q.Filters)
	opts := options.Find()
	sort := bson.D{}
	for _, o := range q.OrderBy {
		dir := 1
		if o.Descending {
			dir = -1
		}
		sort = append(sort, bson.E{Key: o.Field, Value: dir})
	}
	sort = append(sort, bson.E{Key: fieldID, Value: 1})
	opts.SetSort(sort)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if q.Offset > 0 {
		opts.SetSkip(int64(q.Offset))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, docstore.NewTransportError("list", collection, err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	docs := []*docstore.Document{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, docstore.NewTransportError("list", collection, err)
		}
		id, _ := raw[fieldID].(string)
		docs = append(docs, &docstore.Document{ID: id, Fields: normalizeDocument(raw)})
	}
	if err := cursor.Err(); err != nil {
		return nil, docstore.NewTransportError("list", collection, err)
	}
	return docs, nil
}

func (s *mongoDocumentStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := bson.NewObjectID().Hex()

	set := setStage(fields)
	set[fieldRev] = int64(0)

	_, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{fieldID: id},
		mongo.Pipeline{{{Key: "$set", Value: set}}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: %v", docstore.ErrDuplicate, err)
		}
		return "", docstore.NewTransportError("create", collection, err)
	}
	return id, nil
}

func (s *mongoDocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.patch(ctx, "update", collection, bson.M{fieldID: id}, fields)
}

func (s *mongoDocumentStore) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{fieldID: id})
	if err != nil {
		return docstore.NewTransportError("delete", collection, err)
	}
	if result.DeletedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *mongoDocumentStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	result, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{fieldID: id},
		bson.M{"$inc": bson.M{field: delta, fieldRev: int64(1)}},
	)
	if err != nil {
		return docstore.NewTransportError("increment", collection, err)
	}
	if result.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// Mutate reads the document, applies fn, and writes the patch only if _rev is unchanged.
// A concurrent write causes a retry with the fresh document.
func (s *mongoDocumentStore) Mutate(ctx context.Context, collection, id string, fn docstore.MutateFunc) error {
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		fields, rev, err := s.find(ctx, collection, id)
		if err != nil {
			return err
		}

		patch, err := fn(fields)
		if err != nil {
			return err
		}
		if len(patch) == 0 {
			return nil
		}

		err = s.patch(ctx, "mutate", collection, bson.M{fieldID: id, fieldRev: rev}, patch)
		if err == nil {
			return nil
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			return err
		}
		s.logger.Debug("mutate lost a race, retrying", "collection", collection, "id", id, "attempt", attempt+1)
	}
	return docstore.ErrConflict
}

func (s *mongoDocumentStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *mongoDocumentStore) find(ctx context.Context, collection, id string) (map[string]any, int64, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{fieldID: id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, 0, docstore.ErrNotFound
	}
	if err != nil {
		return nil, 0, docstore.NewTransportError("get", collection, err)
	}

	rev, _ := toInt64(raw[fieldRev])
	return normalizeDocument(raw), rev, nil
}

func (s *mongoDocumentStore) patch(ctx context.Context, op, collection string, filter bson.M, fields map[string]any) error {
	set := setStage(fields)
	set[fieldRev] = bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$" + fieldRev, int64(0)}}, int64(1)}}

	result, err := s.db.Collection(collection).UpdateOne(ctx, filter, mongo.Pipeline{{{Key: "$set", Value: set}}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", docstore.ErrDuplicate, err)
		}
		return docstore.NewTransportError(op, collection, err)
	}
	if result.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// setStage builds a pipeline $set document. Values are wrapped in $literal so user content
// beginning with "$" is never evaluated. ServerTimestamp becomes $$NOW.
func setStage(fields map[string]any) bson.M {
	set := bson.M{}
	plain, stamps := docstore.SentinelFields(fields)
	for k, v := range plain {
		set[k] = bson.M{"$literal": v}
	}
	for _, k := range stamps {
		set[k] = "$$NOW"
	}
	return set
}

func buildFilter(filters []docstore.Filter) bson.M {
	if len(filters) == 0 {
		return bson.M{}
	}
	clauses := make(bson.A, 0, len(filters))
	for _, f := range filters {
		clauses = append(clauses, bson.M{f.Field: bson.M{mongoOperator(f.Op): f.Value}})
	}
	return bson.M{"$and": clauses}
}

func mongoOperator(op docstore.Operator) string {
	switch op {
	case docstore.OpLess:
		return "$lt"
	case docstore.OpLessOrEqual:
		return "$lte"
	case docstore.OpGreater:
		return "$gt"
	case docstore.OpGreaterOrEqual:
		return "$gte"
	}
	return "$eq"
}

// normalizeDocument converts driver types into the JSON-shaped values the core expects
func normalizeDocument(raw bson.M) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == fieldID || k == fieldRev {
			continue
		}
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case bson.M:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[k] = normalizeValue(item)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case bson.A:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	case int32:
		return int64(t)
	case bson.ObjectID:
		return t.Hex()
	}
	return v
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}
