package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrItemNotFound is returned when no item exists for the collection and id.
	ErrItemNotFound = errors.New("item not found")
	// ErrItemExists is returned when creating an item whose id is already taken.
	ErrItemExists = errors.New("item already exists")
	// ErrInvalidField is returned when a filter or sort names something that is not a plain field.
	ErrInvalidField = errors.New("invalid field name")
)

const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// FilterOp selects how a Filter compares the stored field to its value.
type FilterOp string

const (
	// OpEq compares text case-insensitively.
	OpEq FilterOp = "eq"
	// OpContains matches a case-insensitive substring.
	OpContains FilterOp = "contains"
	// OpBool compares a boolean field.
	OpBool FilterOp = "bool"
)

// Filter restricts GetAll results on one field.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

// Eq builds a case-insensitive equality filter.
func Eq(field, value string) Filter { return Filter{Field: field, Op: OpEq, Value: value} }

// Contains builds a case-insensitive substring filter.
func Contains(field, value string) Filter { return Filter{Field: field, Op: OpContains, Value: value} }

// Bool builds a boolean filter.
func Bool(field string, value bool) Filter { return Filter{Field: field, Op: OpBool, Value: value} }

// Search matches Term as a substring of any of Fields.
type Search struct {
	Fields []string
	Term   string
}

// Sort orders results by a field. Missing values sort last. Numeric compares JSON
// numbers; Time compares ISO 8601 timestamps as instants, whatever their offset.
type Sort struct {
	Field   string
	Numeric bool
	Time    bool
	Desc    bool
}

// ListOptions controls search, ordering and pagination of GetAll.
type ListOptions struct {
	Search *Search
	Sort   *Sort
	Limit  int
	Skip   int
}

// Page is one window of raw items.
type Page struct {
	Items    []json.RawMessage `json:"items"`
	HasNext  bool              `json:"hasNext"`
	NextSkip *int              `json:"nextSkip,omitempty"`
}

// ItemsRepository is a schemaless document store keyed by collection and id.
type ItemsRepository interface {
	GetAll(ctx context.Context, collection string, filters []Filter, opts ListOptions) (Page, error)
	Count(ctx context.Context, collection string, filters []Filter) (int, error)
	GetByID(ctx context.Context, collection, id string) (json.RawMessage, error)
	Create(ctx context.Context, collection, id string, item any) (json.RawMessage, error)
	Update(ctx context.Context, collection, id string, partial any) (json.RawMessage, error)
}

// PGXItemsRepository stores items as JSONB rows in collection_items.
type PGXItemsRepository struct {
	pool pgxPool
}

// NewPGXItemsRepository wires a pgx backed item store.
func NewPGXItemsRepository(pool *pgxpool.Pool) *PGXItemsRepository {
	return &PGXItemsRepository{pool: pool}
}

// GetAll returns a page of items. It reads one extra row to tell whether more remain.
func (r *PGXItemsRepository) GetAll(ctx context.Context, collection string, filters []Filter, opts ListOptions) (Page, error) {
	where, args, err := buildWhere(collection, filters, opts.Search)
	if err != nil {
		return Page{}, err
	}
	order, err := buildOrder(opts.Sort)
	if err != nil {
		return Page{}, err
	}

	limit := clampLimit(opts.Limit)
	skip := opts.Skip
	if skip < 0 {
		skip = 0
	}

	idx := len(args) + 1
	query := fmt.Sprintf("SELECT data FROM collection_items WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d", where, order, idx, idx+1)
	args = append(args, limit+1, skip)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return Page{}, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	items := make([]json.RawMessage, 0, limit)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return Page{}, fmt.Errorf("scan %s item: %w", collection, err)
		}
		items = append(items, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("iterate %s: %w", collection, err)
	}

	page := Page{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.HasNext = true
		next := skip + limit
		page.NextSkip = &next
	}
	return page, nil
}

// Count returns how many items match filters.
func (r *PGXItemsRepository) Count(ctx context.Context, collection string, filters []Filter) (int, error) {
	where, args, err := buildWhere(collection, filters, nil)
	if err != nil {
		return 0, err
	}
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM collection_items WHERE "+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return total, nil
}

// GetByID fetches a single item.
func (r *PGXItemsRepository) GetByID(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM collection_items WHERE collection = $1 AND id = $2`, collection, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get %s item: %w", collection, err)
	}
	return json.RawMessage(data), nil
}

// Create stores item under id, stamping _id, _createdDate and _updatedDate.
func (r *PGXItemsRepository) Create(ctx context.Context, collection, id string, item any) (json.RawMessage, error) {
	payload, err := marshalObject(item)
	if err != nil {
		return nil, err
	}

	query := `
        INSERT INTO collection_items (collection, id, data, created_at, updated_at)
        VALUES (
            $1, $2,
            ($3::jsonb - '_id' - '_createdDate' - '_updatedDate')
                || jsonb_build_object('_id', $2::text, '_createdDate', to_jsonb(NOW()), '_updatedDate', to_jsonb(NOW())),
            NOW(), NOW()
        )
        RETURNING data
    `

	var data []byte
	if err := r.pool.QueryRow(ctx, query, collection, id, string(payload)).Scan(&data); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s/%s", ErrItemExists, collection, id)
		}
		return nil, fmt.Errorf("insert %s item: %w", collection, err)
	}
	return json.RawMessage(data), nil
}

// Update merges partial into the stored item. System fields cannot be overwritten.
func (r *PGXItemsRepository) Update(ctx context.Context, collection, id string, partial any) (json.RawMessage, error) {
	payload, err := marshalObject(partial)
	if err != nil {
		return nil, err
	}

	query := `
        UPDATE collection_items
        SET data = data
                || ($3::jsonb - '_id' - '_createdDate' - '_updatedDate')
                || jsonb_build_object('_updatedDate', to_jsonb(NOW())),
            updated_at = NOW()
        WHERE collection = $1 AND id = $2
        RETURNING data
    `

	var data []byte
	if err := r.pool.QueryRow(ctx, query, collection, id, string(payload)).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("update %s item: %w", collection, err)
	}
	return json.RawMessage(data), nil
}

func buildWhere(collection string, filters []Filter, search *Search) (string, []any, error) {
	clauses := []string{"collection = $1"}
	args := []any{collection}
	idx := 2

	for _, f := range filters {
		if !fieldPattern.MatchString(f.Field) {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidField, f.Field)
		}
		switch f.Op {
		case OpEq:
			clauses = append(clauses, fmt.Sprintf("LOWER(data->>'%s') = LOWER($%d)", f.Field, idx))
			args = append(args, fmt.Sprint(f.Value))
		case OpContains:
			clauses = append(clauses, fmt.Sprintf("data->>'%s' ILIKE $%d", f.Field, idx))
			args = append(args, likePattern(fmt.Sprint(f.Value)))
		case OpBool:
			value, ok := f.Value.(bool)
			if !ok {
				return "", nil, fmt.Errorf("filter %s: bool value required", f.Field)
			}
			clauses = append(clauses, fmt.Sprintf("COALESCE(data->'%s' = 'true'::jsonb, false) = $%d", f.Field, idx))
			args = append(args, value)
		default:
			return "", nil, fmt.Errorf("filter %s: unsupported op %q", f.Field, f.Op)
		}
		idx++
	}

	if search != nil && strings.TrimSpace(search.Term) != "" && len(search.Fields) > 0 {
		parts := make([]string, 0, len(search.Fields))
		for _, field := range search.Fields {
			if !fieldPattern.MatchString(field) {
				return "", nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
			}
			parts = append(parts, fmt.Sprintf("data->>'%s' ILIKE $%d", field, idx))
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
		args = append(args, likePattern(strings.TrimSpace(search.Term)))
	}

	return strings.Join(clauses, " AND "), args, nil
}

func buildOrder(sort *Sort) (string, error) {
	if sort == nil || sort.Field == "" {
		return "created_at DESC, id ASC", nil
	}
	if !fieldPattern.MatchString(sort.Field) {
		return "", fmt.Errorf("%w: %q", ErrInvalidField, sort.Field)
	}

	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}
	var expr string
	switch {
	case sort.Numeric:
		expr = fmt.Sprintf("CASE WHEN jsonb_typeof(data->'%[1]s') = 'number' THEN (data->>'%[1]s')::float8 END", sort.Field)
	case sort.Time:
		expr = fmt.Sprintf("CASE WHEN data->>'%[1]s' ~ '^[0-9]{4}-[0-9]{2}-[0-9]{2}T' THEN (data->>'%[1]s')::timestamptz END", sort.Field)
	default:
		expr = fmt.Sprintf("LOWER(data->>'%s')", sort.Field)
	}
	return fmt.Sprintf("%s %s NULLS LAST, created_at DESC, id ASC", expr, direction), nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}

func marshalObject(v any) ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	if len(payload) == 0 || payload[0] != '{' {
		return nil, errors.New("item must be a JSON object")
	}
	return payload, nil
}
