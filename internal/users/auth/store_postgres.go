// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the auth storage contracts.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows or SQLSTATE 23505) are mapped
// to domain-friendly [apperr.AppError] types to avoid leaking storage
// implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/identra/internal/platform/apperr"
)

// accountColumns is the shared projection used by every account lookup,
// with the owned address joined in.
const accountColumns = `
	a.id, a.email, a.name, a.passwordhash, a.role, a.document, a.birthday, a.createdat, a.updatedat,
	d.id, d.street, d.number, d.complement, d.neighborhood, d.city, d.state, d.country, d.zipcode`

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user record into the users.account table, together
with its owned address (users.address) when one is attached.

Description: Both rows are written inside a single transaction so a failed
address insert can never leave a half-registered account behind. The email
unique constraint is the final race guard: a concurrent duplicate surfaces
as SQLSTATE 23505 and is mapped to the same Conflict the precondition
check produces.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const insertAccount = `
		INSERT INTO users.account (
			id, email, name, passwordhash, role, document, birthday, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	const insertAddress = `
		INSERT INTO users.address (
			id, accountid, street, number, complement, neighborhood, city, state, country, zipcode, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	_, err = transaction.Exec(context, insertAccount,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.Document,
		user.Birthday,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	if user.Address != nil {
		_, err = transaction.Exec(context, insertAddress,
			user.Address.ID,
			user.ID,
			user.Address.Street,
			user.Address.Number,
			user.Address.Complement,
			user.Address.Neighborhood,
			user.Address.City,
			user.Address.State,
			user.Address.Country,
			user.Address.ZipCode,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("postgres_user_repo_create_address_failed: %w", err)
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_user_repo_commit_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity (with address, when present)
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM users.account a
		LEFT JOIN users.address d ON d.accountid = a.id
		WHERE a.email = $1`

	user, err := scanUserRow(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity (with address, when present)
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM users.account a
		LEFT JOIN users.address d ON d.accountid = a.id
		WHERE a.id = $1`

	user, err := scanUserRow(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
Exists reports whether the account with the given ID is present.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - bool: Presence flag
  - error: Execution errors
*/
func (repository *PostgresUserRepository) Exists(context context.Context, id string) (bool, error) {
	const query = "SELECT EXISTS (SELECT 1 FROM users.account WHERE id = $1)"

	var exists bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_user_repo_exists_failed: %w", err)
	}

	return exists, nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

// # Scan Helpers

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUserRow hydrates a User (and its optional Address) from the shared
// accountColumns projection.
func scanUserRow(row rowScanner) (*User, error) {
	user := &User{}

	var (
		addressID    *string
		street       *string
		number       *string
		complement   *string
		neighborhood *string
		city         *string
		state        *string
		country      *string
		zipCode      *string
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.Document,
		&user.Birthday,
		&user.CreatedAt,
		&user.UpdatedAt,
		&addressID,
		&street,
		&number,
		&complement,
		&neighborhood,
		&city,
		&state,
		&country,
		&zipCode,
	)
	if err != nil {
		return nil, err
	}

	// LEFT JOIN: address columns are NULL when the account owns none.
	if addressID != nil {
		user.Address = &Address{
			ID:           *addressID,
			Street:       *street,
			Number:       *number,
			Complement:   complement,
			Neighborhood: *neighborhood,
			City:         *city,
			State:        *state,
			Country:      *country,
			ZipCode:      *zipCode,
		}
	}

	return user, nil
}

// isUniqueViolation classifies SQLSTATE 23505 (unique_violation).
func isUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation
}
