// Package docstore defines the document-store contract the blog core is written against.
//
// A store holds schema-flexible documents grouped into collections. Field maps use
// JSON-shaped values (string, bool, numbers, time.Time, map[string]any, []any) plus the
// ServerTimestamp sentinel, which the store replaces with its own clock at write time.
// Implementations live in internal/db/postgres, internal/db/mongo and MemoryStore here.
package docstore

import (
	"context"
	"time"
)

// Collection names used by the application
const (
	CollectionUsers    = "users"
	CollectionPosts    = "posts"
	CollectionComments = "comments"
)

// Sentinel is a placeholder value a store resolves at write time
type Sentinel int

// ServerTimestamp is replaced by the store's clock when it appears as a top-level field value
// in Create, Update or a Mutate patch. Every occurrence within one write resolves to the same instant.
const ServerTimestamp Sentinel = 1

// Document is a single stored record
type Document struct {
	Fields map[string]any
	ID     string
}

// MutateFunc receives the current fields of a document and returns the patch to apply.
// Returning a nil or empty patch leaves the document untouched.
type MutateFunc func(fields map[string]any) (map[string]any, error)

// Store is the document-store client used by repositories
type Store interface {
	// Get returns the document or ErrNotFound
	Get(ctx context.Context, collection, id string) (*Document, error)

	// List returns the documents matching q, ordered and bounded as q specifies
	List(ctx context.Context, collection string, q Query) ([]*Document, error)

	// Create inserts a new document and returns its store-assigned identifier
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Update overwrites only the given top-level fields. Fails with ErrNotFound.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes the document permanently. Fails with ErrNotFound.
	Delete(ctx context.Context, collection, id string) error

	// Increment atomically adds delta to a numeric field. Fails with ErrNotFound.
	Increment(ctx context.Context, collection, id, field string, delta int64) error

	// Mutate runs fn against the current document and applies its patch atomically with
	// respect to every other write on the same document. Fails with ErrNotFound.
	Mutate(ctx context.Context, collection, id string, fn MutateFunc) error

	// Close releases the underlying connection
	Close(ctx context.Context) error
}

// resolveSentinels returns a copy of fields with every ServerTimestamp replaced by now
func resolveSentinels(fields map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if s, ok := v.(Sentinel); ok && s == ServerTimestamp {
			out[k] = now
			continue
		}
		out[k] = v
	}
	return out
}

// SentinelFields splits fields into plain values and the names of fields set to ServerTimestamp.
// Store implementations that resolve timestamps on the database side use it.
func SentinelFields(fields map[string]any) (plain map[string]any, timestamps []string) {
	plain = make(map[string]any, len(fields))
	for k, v := range fields {
		if s, ok := v.(Sentinel); ok && s == ServerTimestamp {
			timestamps = append(timestamps, k)
			continue
		}
		plain[k] = v
	}
	return plain, timestamps
}
