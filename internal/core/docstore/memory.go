package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore is an in-process Store. It backs tests and the "memory" driver for local development.
type MemoryStore struct {
	collections map[string]map[string]map[string]any
	sequences   map[string]int64
	unique      map[string][]string
	now         func() time.Time
	newID       func(collection string, seq int64) string
	logger      *slog.Logger
	calls       atomic.Int64
	mu          sync.RWMutex
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithClock overrides the clock used to resolve ServerTimestamp
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// WithIDGenerator overrides how new document identifiers are assigned
func WithIDGenerator(fn func(collection string, seq int64) string) MemoryOption {
	return func(s *MemoryStore) { s.newID = fn }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) MemoryOption {
	return func(s *MemoryStore) { s.logger = logger }
}

// WithUniqueField rejects writes that would give two documents in collection the same
// non-nil value for field. users.email is always unique.
func WithUniqueField(collection, field string) MemoryOption {
	return func(s *MemoryStore) { s.unique[collection] = append(s.unique[collection], field) }
}

// NewMemoryStore creates an empty in-memory store.
// By default identifiers are the collection's first letter followed by a per-collection sequence (p1, p2, ...).
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
		sequences:   make(map[string]int64),
		unique:      map[string][]string{CollectionUsers: {"email"}},
		now:         func() time.Time { return time.Now().UTC() },
		newID:       defaultMemoryID,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultMemoryID(collection string, seq int64) string {
	prefix := "d"
	if collection != "" {
		prefix = collection[:1]
	}
	return prefix + strconv.FormatInt(seq, 10)
}

// Calls returns how many store operations have been issued
func (s *MemoryStore) Calls() int64 {
	return s.calls.Load()
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, NewTransportError("get", collection, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Fields: cloneFields(fields)}, nil
}

func (s *MemoryStore) List(ctx context.Context, collection string, q Query) ([]*Document, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, NewTransportError("list", collection, err)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	docs := make([]*Document, 0, len(s.collections[collection]))
	for id, fields := range s.collections[collection] {
		if !matchesAll(fields, q.Filters) {
			continue
		}
		docs = append(docs, &Document{ID: id, Fields: cloneFields(fields)})
	}
	s.mu.RUnlock()

	sort.SliceStable(docs, func(i, j int) bool {
		for _, o := range q.OrderBy {
			c, ok := Compare(docs[i].Fields[o.Field], docs[j].Fields[o.Field])
			if !ok || c == 0 {
				continue
			}
			if o.Descending {
				return c > 0
			}
			return c < 0
		}
		return docs[i].ID < docs[j].ID
	})

	if q.Offset > 0 {
		if q.Offset >= len(docs) {
			return []*Document{}, nil
		}
		docs = docs[q.Offset:]
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (s *MemoryStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", NewTransportError("create", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}

	resolved := cloneFields(resolveSentinels(fields, s.now()))
	if err := s.checkUnique(collection, "", resolved); err != nil {
		return "", err
	}

	s.sequences[collection]++
	id := s.newID(collection, s.sequences[collection])
	if _, exists := s.collections[collection][id]; exists {
		return "", fmt.Errorf("%w: id %s already used in %s", ErrDuplicate, id, collection)
	}

	s.collections[collection][id] = resolved
	s.logger.Debug("document created", "collection", collection, "id", id)
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return NewTransportError("update", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	resolved := cloneFields(resolveSentinels(fields, s.now()))
	if err := s.checkUnique(collection, id, resolved); err != nil {
		return err
	}
	for k, v := range resolved {
		current[k] = v
	}
	return nil
}

// checkUnique reports ErrDuplicate when fields collide with another document on a unique field.
// The caller holds the write lock; self is the document being updated, empty on create.
func (s *MemoryStore) checkUnique(collection, self string, fields map[string]any) error {
	for _, field := range s.unique[collection] {
		v, ok := fields[field]
		if !ok || v == nil {
			continue
		}
		for id, other := range s.collections[collection] {
			if id == self {
				continue
			}
			if c, ok := Compare(other[field], v); ok && c == 0 {
				return fmt.Errorf("%w: %s.%s", ErrDuplicate, collection, field)
			}
		}
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return NewTransportError("delete", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return NewTransportError("increment", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}

	switch n := current[field].(type) {
	case nil:
		current[field] = delta
	case int:
		current[field] = int64(n) + delta
	case int64:
		current[field] = n + delta
	case float64:
		current[field] = n + float64(delta)
	default:
		return fmt.Errorf("cannot increment non-numeric field %s (%T)", field, n)
	}
	return nil
}

func (s *MemoryStore) Mutate(ctx context.Context, collection, id string, fn MutateFunc) error {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return NewTransportError("mutate", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}

	patch, err := fn(cloneFields(current))
	if err != nil {
		return err
	}
	for k, v := range cloneFields(resolveSentinels(patch, s.now())) {
		current[k] = v
	}
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func matchesAll(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !f.Matches(fields[f.Field]) {
			return false
		}
	}
	return true
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneFields(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}
