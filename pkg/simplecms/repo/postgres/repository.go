// Package postgres stores content types and entities in PostgreSQL.
//
// Content type schemas and property values are stored as JSONB. Entities are
// rebound to their content type when loaded, so every property points at the
// property type declared on the returned entity's ContentType.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplecms.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate creates the tables if they do not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return r.handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "content_type") {
				return fmt.Errorf("%s: content type: %w", operation, simplecms.ErrAlreadyExists)
			}
			if strings.Contains(pgErr.ConstraintName, "content") {
				return fmt.Errorf("%s: content: %w", operation, simplecms.ErrAlreadyExists)
			}
			return fmt.Errorf("%s: %w", operation, simplecms.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", operation, simplecms.ErrContentTypeNotFound)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Content type operations

func (r *Repository) CreateContentType(ctx context.Context, contentType *simplecms.ContentType) error {
	schema, err := json.Marshal(contentType)
	if err != nil {
		return fmt.Errorf("encode content type %q: %w", contentType.Alias, err)
	}

	query := `
		INSERT INTO content_type (alias, id, name, kind, schema)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.Exec(ctx, query,
		contentType.Alias, contentType.ID, contentType.Name, string(contentType.Kind), schema)
	if err != nil {
		return r.handlePostgresError("create content type", err)
	}
	return nil
}

func (r *Repository) GetContentType(ctx context.Context, alias string) (*simplecms.ContentType, error) {
	query := `SELECT schema FROM content_type WHERE alias = $1`

	var schema []byte
	if err := r.db.QueryRow(ctx, query, alias).Scan(&schema); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", simplecms.ErrContentTypeNotFound, alias)
		}
		return nil, r.handlePostgresError("get content type", err)
	}

	var ct simplecms.ContentType
	if err := json.Unmarshal(schema, &ct); err != nil {
		return nil, fmt.Errorf("decode content type %q: %w", alias, err)
	}
	return &ct, nil
}

// Entity operations

// propertyRecord is the stored form of a property; the schema lives on the
// content type.
type propertyRecord struct {
	ID    int             `json:"id"`
	Alias string          `json:"alias"`
	Value simplecms.Value `json:"value"`
}

func encodeProperties(props []*simplecms.Property) ([]byte, error) {
	records := make([]propertyRecord, 0, len(props))
	for _, p := range props {
		records = append(records, propertyRecord{ID: p.ID, Alias: p.Alias(), Value: p.Value})
	}
	return json.Marshal(records)
}

// bind attaches decoded property records to the entity's content type.
// Records whose alias is no longer declared keep a bare property type so they
// still show up in projections.
func bind(ct *simplecms.ContentType, data []byte) ([]*simplecms.Property, error) {
	var records []propertyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	props := make([]*simplecms.Property, 0, len(records))
	for _, rec := range records {
		pt, ok := ct.PropertyType(rec.Alias)
		if !ok {
			pt = &simplecms.PropertyType{ID: rec.ID, Alias: rec.Alias, Name: rec.Alias}
		}
		props = append(props, &simplecms.Property{ID: rec.ID, PropertyType: pt, Value: rec.Value})
	}
	return props, nil
}

func (r *Repository) CreateContent(ctx context.Context, entity *simplecms.ContentEntity) error {
	if entity.ContentType == nil {
		return simplecms.ErrInvalidEntity
	}
	props, err := encodeProperties(entity.Properties)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}

	query := `
		INSERT INTO content (
			id, parent_id, name, kind, content_type_alias, creator_id,
			properties, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.Exec(ctx, query,
		entity.ID, entity.ParentID, entity.Name, string(entity.Kind),
		entity.ContentType.Alias, entity.CreatorID, props,
		entity.CreatedAt, entity.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create content", err)
	}
	return nil
}

const selectContent = `
	SELECT c.id, c.parent_id, c.name, c.kind, c.creator_id, c.properties,
	       c.created_at, c.updated_at, t.schema
	FROM content c
	JOIN content_type t ON t.alias = c.content_type_alias`

func scanContent(row pgx.Row) (*simplecms.ContentEntity, error) {
	var (
		entity      simplecms.ContentEntity
		kind        string
		props, meta []byte
	)
	if err := row.Scan(
		&entity.ID, &entity.ParentID, &entity.Name, &kind, &entity.CreatorID, &props,
		&entity.CreatedAt, &entity.UpdatedAt, &meta); err != nil {
		return nil, err
	}
	entity.Kind = simplecms.EntityKind(kind)

	var ct simplecms.ContentType
	if err := json.Unmarshal(meta, &ct); err != nil {
		return nil, fmt.Errorf("decode content type: %w", err)
	}
	entity.ContentType = &ct

	properties, err := bind(&ct, props)
	if err != nil {
		return nil, fmt.Errorf("decode properties of %s: %w", entity.ID, err)
	}
	entity.Properties = properties
	return &entity, nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*simplecms.ContentEntity, error) {
	entity, err := scanContent(r.db.QueryRow(ctx, selectContent+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrContentNotFound
		}
		return nil, r.handlePostgresError("get content", err)
	}
	return entity, nil
}

func (r *Repository) UpdateContent(ctx context.Context, entity *simplecms.ContentEntity) error {
	props, err := encodeProperties(entity.Properties)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}

	query := `
		UPDATE content SET
			parent_id = $2, name = $3, properties = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		entity.ID, entity.ParentID, entity.Name, props, entity.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update content", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrContentNotFound
	}
	return nil
}

func (r *Repository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*simplecms.ContentEntity, error) {
	rows, err := r.db.Query(ctx, selectContent+` WHERE c.parent_id = $1 ORDER BY c.created_at`, parentID)
	if err != nil {
		return nil, r.handlePostgresError("list children", err)
	}
	defer rows.Close()

	var result []*simplecms.ContentEntity
	for rows.Next() {
		entity, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list children", err)
	}
	return result, nil
}
