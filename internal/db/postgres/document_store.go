package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"Inkwell/internal/core/docstore"
)

// serverTimestampExpr renders the transaction time as a fixed-width UTC string so that
// text ordering of stored timestamps matches time ordering
const serverTimestampExpr = `to_jsonb(to_char(NOW() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS.US"Z"'))`

// filterTimeLayout matches serverTimestampExpr
const filterTimeLayout = "2006-01-02T15:04:05.000000Z"

// uniqueViolation is the Postgres SQLSTATE for unique_violation
const uniqueViolation = "23505"

type postgresDocumentStore struct {
	db     *sql.DB
	newID  func() string
	logger *slog.Logger
}

// NewDocumentStore creates a docstore.Store over the documents table
func NewDocumentStore(db *sql.DB, logger *slog.Logger) docstore.Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &postgresDocumentStore{
		db:     db,
		newID:  func() string { return uuid.New().String() },
		logger: logger,
	}
}

func (s *postgresDocumentStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, docstore.NewTransportError("get", collection, err)
	}
	return decodeDocument(id, raw)
}

func (s *postgresDocumentStore) List(ctx context.Context, collection string, q docstore.Query) ([]*docstore.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query, args, err := buildListQuery(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, docstore.NewTransportError("list", collection, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", "error", closeErr)
		}
	}()

	docs := []*docstore.Document{}
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, docstore.NewTransportError("list", collection, err)
		}
		doc, err := decodeDocument(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, docstore.NewTransportError("list", collection, err)
	}
	return docs, nil
}

func (s *postgresDocumentStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	plain, stamps := docstore.SentinelFields(fields)
	data, err := json.Marshal(plain)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	id := s.newID()
	stampSQL, stampArgs := stampExpr(stamps, 4)
	query := `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb || ` + stampSQL + `, NOW(), NOW())
	`
	args := append([]any{collection, id, string(data)}, stampArgs...)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: %v", docstore.ErrDuplicate, err)
		}
		return "", docstore.NewTransportError("create", collection, err)
	}
	return id, nil
}

func (s *postgresDocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.patch(ctx, s.db, "update", collection, id, fields)
}

func (s *postgresDocumentStore) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return docstore.NewTransportError("delete", collection, err)
	}
	return requireRow(result, "delete", collection)
}

func (s *postgresDocumentStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	query := `
		UPDATE documents
		SET data = jsonb_set(
				data,
				ARRAY[$3::text],
				to_jsonb(COALESCE((data->>$3::text)::numeric, 0) + $4::bigint)
			),
			updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`
	result, err := s.db.ExecContext(ctx, query, collection, id, field, delta)
	if err != nil {
		return docstore.NewTransportError("increment", collection, err)
	}
	return requireRow(result, "increment", collection)
}

func (s *postgresDocumentStore) Mutate(ctx context.Context, collection, id string, fn docstore.MutateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return docstore.NewTransportError("mutate", collection, err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && rollbackErr != sql.ErrTxDone {
			s.logger.Warn("failed to rollback mutate transaction", "error", rollbackErr)
		}
	}()

	var raw []byte
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
		collection, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return docstore.ErrNotFound
	}
	if err != nil {
		return docstore.NewTransportError("mutate", collection, err)
	}

	doc, err := decodeDocument(id, raw)
	if err != nil {
		return err
	}

	patch, err := fn(doc.Fields)
	if err != nil {
		return err
	}
	if len(patch) > 0 {
		if err := s.patch(ctx, tx, "mutate", collection, id, patch); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return docstore.NewTransportError("mutate", collection, err)
	}
	return nil
}

func (s *postgresDocumentStore) Close(ctx context.Context) error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// patch merges fields into the stored document
func (s *postgresDocumentStore) patch(ctx context.Context, db execer, op, collection, id string, fields map[string]any) error {
	plain, stamps := docstore.SentinelFields(fields)
	data, err := json.Marshal(plain)
	if err != nil {
		return fmt.Errorf("failed to encode patch: %w", err)
	}

	stampSQL, stampArgs := stampExpr(stamps, 4)
	query := `
		UPDATE documents
		SET data = data || $3::jsonb || ` + stampSQL + `,
			updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`
	args := append([]any{collection, id, string(data)}, stampArgs...)

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", docstore.ErrDuplicate, err)
		}
		return docstore.NewTransportError(op, collection, err)
	}
	return requireRow(result, op, collection)
}

// stampExpr builds a jsonb object setting every named field to the server timestamp.
// Placeholders are numbered from argStart.
func stampExpr(fields []string, argStart int) (string, []any) {
	if len(fields) == 0 {
		return `'{}'::jsonb`, nil
	}
	parts := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for i, f := range fields {
		parts = append(parts, fmt.Sprintf("$%d::text, %s", argStart+i, serverTimestampExpr))
		args = append(args, f)
	}
	return "jsonb_build_object(" + strings.Join(parts, ", ") + ")", args
}

// buildListQuery translates a docstore.Query into SQL over the documents table
func buildListQuery(collection string, q docstore.Query) (string, []any, error) {
	args := []any{collection}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, data FROM documents WHERE collection = $1")

	for _, f := range q.Filters {
		field := next(f.Field)
		op := string(f.Op)
		if f.Op == docstore.OpEqual {
			op = "="
		}

		switch v := f.Value.(type) {
		case string:
			fmt.Fprintf(&sb, ` AND (data->>%s::text) COLLATE "C" %s %s::text COLLATE "C"`, field, op, next(v))
		case time.Time:
			fmt.Fprintf(&sb, ` AND (data->>%s::text) COLLATE "C" %s %s::text COLLATE "C"`, field, op, next(v.UTC().Format(filterTimeLayout)))
		case bool:
			if f.Op != docstore.OpEqual {
				return "", nil, fmt.Errorf("operator %s is not supported for boolean field %s", f.Op, f.Field)
			}
			fmt.Fprintf(&sb, ` AND (data->%s::text) = to_jsonb(%s::boolean)`, field, next(v))
		case int, int32, int64, float32, float64:
			fmt.Fprintf(&sb,
				` AND (CASE WHEN jsonb_typeof(data->%s::text) = 'number' THEN (data->>%s::text)::numeric END) %s %s::numeric`,
				field, field, op, next(v))
		default:
			return "", nil, fmt.Errorf("unsupported filter value %T for field %s", f.Value, f.Field)
		}
	}

	order := make([]string, 0, len(q.OrderBy)*2+1)
	for _, o := range q.OrderBy {
		field := next(o.Field)
		dir := "ASC"
		if o.Descending {
			dir = "DESC"
		}
		order = append(order,
			fmt.Sprintf(`(CASE WHEN jsonb_typeof(data->%s::text) = 'number' THEN (data->>%s::text)::numeric END) %s`, field, field, dir),
			fmt.Sprintf(`(data->>%s::text) COLLATE "C" %s`, field, dir),
		)
	}
	order = append(order, "id ASC")
	sb.WriteString(" ORDER BY " + strings.Join(order, ", "))

	if q.Limit > 0 {
		sb.WriteString(" LIMIT " + next(q.Limit))
	}
	if q.Offset > 0 {
		sb.WriteString(" OFFSET " + next(q.Offset))
	}
	return sb.String(), args, nil
}

func decodeDocument(id string, raw []byte) (*docstore.Document, error) {
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return &docstore.Document{ID: id, Fields: fields}, nil
}

func requireRow(result sql.Result, op, collection string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return docstore.NewTransportError(op, collection, err)
	}
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
