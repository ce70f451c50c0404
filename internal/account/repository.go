// AngelaMos | 2026
// repository.go

package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/revue/internal/core"
)

const accountColumns = `
	id, username, email, first_name, last_name, bio, role,
	is_staff, is_superuser, password_hash, confirmed, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, acc *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, acc *Account) error
	SetConfirmed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListAccountsParams) ([]Account, int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, acc *Account) error {
	query := `
		INSERT INTO accounts (
			id, username, email, first_name, last_name, bio, role,
			is_staff, is_superuser, password_hash, confirmed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, acc, query,
		acc.ID,
		acc.Username,
		acc.Email,
		acc.FirstName,
		acc.LastName,
		acc.Bio,
		acc.Role,
		acc.IsStaff,
		acc.IsSuperuser,
		acc.PasswordHash,
		acc.Confirmed,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM accounts WHERE id = $1`,
		accountColumns,
	)

	var acc Account
	err := r.db.GetContext(ctx, &acc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &acc, nil
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*Account, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM accounts WHERE username = $1`,
		accountColumns,
	)

	var acc Account
	err := r.db.GetContext(ctx, &acc, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account by username: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by username: %w", err)
	}

	return &acc, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*Account, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM accounts WHERE email = $1`,
		accountColumns,
	)

	var acc Account
	err := r.db.GetContext(ctx, &acc, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}

	return &acc, nil
}

func (r *repository) Update(ctx context.Context, acc *Account) error {
	query := `
		UPDATE accounts
		SET username = $2, email = $3, first_name = $4, last_name = $5,
		    bio = $6, role = $7, password_hash = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &acc.UpdatedAt, query,
		acc.ID,
		acc.Username,
		acc.Email,
		acc.FirstName,
		acc.LastName,
		acc.Bio,
		acc.Role,
		acc.PasswordHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update account: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("update account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update account: %w", err)
	}

	return nil
}

func (r *repository) SetConfirmed(ctx context.Context, id string) error {
	query := `
		UPDATE accounts
		SET confirmed = true, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("confirm account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("confirm account: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("confirm account: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM accounts WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete account: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListAccountsParams,
) ([]Account, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"username ILIKE $%d", argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM accounts WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM accounts
		WHERE %s
		ORDER BY username ASC
		LIMIT $%d OFFSET $%d`,
		accountColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var accounts []Account
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, total, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
