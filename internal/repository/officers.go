package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/lead-intel/internal/entity"
)

// ErrOfficerNotFound is returned when no officer matches the lookup criteria.
var (
	ErrOfficerNotFound = errors.New("officer not found")
	ErrEmailDuplicate  = errors.New("email already exists")
)

const officerColumns = "id, email, password_hash, role, name, phone, created_at, updated_at"

// CreateOfficerParams holds the columns set when an officer is created.
type CreateOfficerParams struct {
	Email        string
	PasswordHash string
	Role         string
	Name         *string
	Phone        *string
}

// UpdateOfficerParams lists the columns to patch; nil fields are left untouched.
type UpdateOfficerParams struct {
	Email        *string
	PasswordHash *string
	Role         *string
	Name         *string
	Phone        *string
}

// OfficersRepository declares persistence operations for officer accounts.
type OfficersRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.Officer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Officer, error)
	Create(ctx context.Context, params CreateOfficerParams) (*entity.Officer, error)
	List(ctx context.Context) ([]entity.Officer, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateOfficerParams) (*entity.Officer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGXOfficersRepository implements OfficersRepository with pgx.
type PGXOfficersRepository struct {
	pool pgxPool
}

// NewPGXOfficersRepository instantiates an officers repository.
func NewPGXOfficersRepository(pool *pgxpool.Pool) *PGXOfficersRepository {
	return &PGXOfficersRepository{pool: pool}
}

// FindByEmail fetches an officer by email if present.
func (r *PGXOfficersRepository) FindByEmail(ctx context.Context, email string) (*entity.Officer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+officerColumns+` FROM officers WHERE email = $1`, email)
	officer, err := scanOfficer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfficerNotFound
		}
		return nil, fmt.Errorf("query officer by email: %w", err)
	}
	return officer, nil
}

// FindByID retrieves an officer by identifier.
func (r *PGXOfficersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Officer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+officerColumns+` FROM officers WHERE id = $1`, id)
	officer, err := scanOfficer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfficerNotFound
		}
		return nil, fmt.Errorf("query officer by id: %w", err)
	}
	return officer, nil
}

// Create inserts a new officer row.
func (r *PGXOfficersRepository) Create(ctx context.Context, params CreateOfficerParams) (*entity.Officer, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO officers (email, password_hash, role, name, phone)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+officerColumns,
		params.Email, params.PasswordHash, params.Role, params.Name, params.Phone)

	officer, err := scanOfficer(row)
	if err != nil {
		if isDuplicateEmail(err) {
			return nil, fmt.Errorf("%w: %v", ErrEmailDuplicate, err)
		}
		return nil, fmt.Errorf("insert officer: %w", err)
	}
	return officer, nil
}

// List returns all officers ordered by creation date (desc).
func (r *PGXOfficersRepository) List(ctx context.Context) ([]entity.Officer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+officerColumns+` FROM officers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list officers: %w", err)
	}
	defer rows.Close()

	var officers []entity.Officer
	for rows.Next() {
		officer, err := scanOfficer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan officer row: %w", err)
		}
		officers = append(officers, *officer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate officers: %w", err)
	}
	return officers, nil
}

// Update patches officer attributes.
func (r *PGXOfficersRepository) Update(ctx context.Context, id uuid.UUID, params UpdateOfficerParams) (*entity.Officer, error) {
	setClauses := make([]string, 0, 5)
	args := make([]any, 0, 6)
	idx := 1

	set := func(column string, value *string) {
		if value == nil {
			return
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, *value)
		idx++
	}
	set("email", params.Email)
	set("password_hash", params.PasswordHash)
	set("role", params.Role)
	set("name", params.Name)
	set("phone", params.Phone)

	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE officers SET %s WHERE id = $%d RETURNING %s`, strings.Join(setClauses, ", "), idx, officerColumns)

	officer, err := scanOfficer(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfficerNotFound
		}
		if isDuplicateEmail(err) {
			return nil, fmt.Errorf("%w: %v", ErrEmailDuplicate, err)
		}
		return nil, fmt.Errorf("update officer: %w", err)
	}
	return officer, nil
}

// Delete removes an officer by id.
func (r *PGXOfficersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM officers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete officer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrOfficerNotFound
	}
	return nil
}

func scanOfficer(row rowScanner) (*entity.Officer, error) {
	var o entity.Officer
	if err := row.Scan(&o.ID, &o.Email, &o.PasswordHash, &o.Role, &o.Name, &o.Phone, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func isDuplicateEmail(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && strings.Contains(pgErr.ConstraintName+pgErr.Message, "officers_email_key")
}
