package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PrincipalFilter narrows principal listings.
type PrincipalFilter struct {
	Role             *domain.Role
	UsernameContains string
}

// PrincipalRepository defines persistence access for principals.
type PrincipalRepository interface {
	Create(ctx context.Context, principal *domain.Principal) error
	GetByID(ctx context.Context, id string) (*domain.Principal, error)
	GetByUsername(ctx context.Context, username string) (*domain.Principal, error)
	GetByEmail(ctx context.Context, email string) (*domain.Principal, error)
	List(ctx context.Context, filter PrincipalFilter) ([]domain.Principal, error)
	ExistsWithRole(ctx context.Context, role domain.Role) (bool, error)
	Delete(ctx context.Context, id string) error
}

type principalRepository struct {
	db DBTX
}

// NewPrincipalRepository returns a Postgres-backed implementation.
func NewPrincipalRepository(db DBTX) PrincipalRepository {
	return &principalRepository{db: db}
}

const principalColumns = `
        p.id, p.user_name, p.email, p.full_name, p.phone_number, p.password_hash, p.user_role,
        p.department_id, d.name, p.created_at`

const principalFrom = `
        FROM principals p LEFT JOIN departments d ON d.id = p.department_id`

func (r *principalRepository) Create(ctx context.Context, principal *domain.Principal) error {
	const query = `
        INSERT INTO principals (id, user_name, email, full_name, phone_number, password_hash, user_role, department_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		principal.ID,
		principal.Username,
		principal.Email,
		principal.FullName,
		principal.PhoneNumber,
		principal.PasswordHash,
		principal.Role,
		principal.DepartmentID,
	).Scan(&principal.CreatedAt)
	return duplicate(err)
}

func (r *principalRepository) GetByID(ctx context.Context, id string) (*domain.Principal, error) {
	return r.fetchSingle(ctx, `SELECT`+principalColumns+principalFrom+` WHERE p.id=$1`, id)
}

// GetByUsername matches the login identifier exactly and case-sensitively.
func (r *principalRepository) GetByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	return r.fetchSingle(ctx, `SELECT`+principalColumns+principalFrom+` WHERE p.user_name=$1`, username)
}

func (r *principalRepository) GetByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	return r.fetchSingle(ctx, `SELECT`+principalColumns+principalFrom+` WHERE p.email=$1 LIMIT 1`, email)
}

// listPrincipalsQuery matches the username search as a literal substring.
const listPrincipalsQuery = `SELECT` + principalColumns + principalFrom + ` WHERE ($1::text IS NULL OR p.user_role=$1)
          AND ($2 = '' OR strpos(p.user_name, $2) > 0)
        ORDER BY p.user_name`

func (r *principalRepository) List(ctx context.Context, filter PrincipalFilter) ([]domain.Principal, error) {
	var role *string
	if filter.Role != nil {
		value := string(*filter.Role)
		role = &value
	}
	rows, err := r.db.Query(ctx, listPrincipalsQuery, role, filter.UsernameContains)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Principal
	for rows.Next() {
		var principal domain.Principal
		if err := scanPrincipal(rows, &principal); err != nil {
			return nil, err
		}
		result = append(result, principal)
	}
	return result, rows.Err()
}

func (r *principalRepository) ExistsWithRole(ctx context.Context, role domain.Role) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM principals WHERE user_role=$1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, role).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *principalRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM principals WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *principalRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Principal, error) {
	var principal domain.Principal
	if err := scanPrincipal(r.db.QueryRow(ctx, query, arg), &principal); err != nil {
		return nil, notFound(err)
	}
	return &principal, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrincipal(row rowScanner, principal *domain.Principal) error {
	return row.Scan(
		&principal.ID,
		&principal.Username,
		&principal.Email,
		&principal.FullName,
		&principal.PhoneNumber,
		&principal.PasswordHash,
		&principal.Role,
		&principal.DepartmentID,
		&principal.DepartmentName,
		&principal.CreatedAt,
	)
}
