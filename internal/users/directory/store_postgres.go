// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the directory storage contracts.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE 23505) are mapped to
// domain-friendly [apperr.AppError] types before crossing the boundary.
package directory

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
	"github.com/taibuivan/identra/internal/users/auth"
)

// directoryColumns is the shared projection used by every directory lookup,
// with the owned address joined in.
const directoryColumns = `
	a.id, a.email, a.name, a.passwordhash, a.role, a.document, a.birthday, a.createdat, a.updatedat,
	d.id, d.street, d.number, d.complement, d.neighborhood, d.city, d.state, d.country, d.zipcode`

// # Directory Repository

// PostgresDirectoryRepository implements UserDirectoryRepository using pgx.
type PostgresDirectoryRepository struct {
	pool *pgxpool.Pool
}

// NewDirectoryRepository creates a new PostgreSQL implementation of the
// UserDirectoryRepository.
func NewDirectoryRepository(pool *pgxpool.Pool) *PostgresDirectoryRepository {
	return &PostgresDirectoryRepository{pool: pool}
}

/*
ListAll retrieves every account ordered by creation time.

Parameters:
  - context: context.Context

Returns:
  - []*auth.User: All accounts, addresses hydrated through the LEFT JOIN
  - error: Execution errors
*/
func (repository *PostgresDirectoryRepository) ListAll(context context.Context) ([]*auth.User, error) {
	query := `
		SELECT ` + directoryColumns + `
		FROM users.account a
		LEFT JOIN users.address d ON d.accountid = a.id
		ORDER BY a.createdat ASC`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_directory_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*auth.User, 0)
	for rows.Next() {
		user, err := scanDirectoryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_directory_repo_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_directory_repo_rows_failed: %w", err)
	}

	return users, nil
}

/*
FindByID retrieves an account record by its unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *auth.User: Hydrated account entity (with address, when present)
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresDirectoryRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	query := `
		SELECT ` + directoryColumns + `
		FROM users.account a
		LEFT JOIN users.address d ON d.accountid = a.id
		WHERE a.id = $1`

	user, err := scanDirectoryRow(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_directory_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
Update persists a merged account record, upserting the owned address.

Description: Account fields and the address are written in one transaction.
The address upsert keys on the accountid unique constraint so an account can
never accumulate a second address row. An email change racing another
account's registration surfaces as SQLSTATE 23505 and maps to Conflict.

Parameters:
  - context: context.Context
  - user: *auth.User (Fully merged entity)

Returns:
  - error: apperr.Conflict on duplicate email, or execution errors
*/
func (repository *PostgresDirectoryRepository) Update(context context.Context, user *auth.User) error {
	const updateAccount = `
		UPDATE users.account
		SET email = $2, name = $3, document = $4, birthday = $5, updatedat = $6
		WHERE id = $1`

	const upsertAddress = `
		INSERT INTO users.address (
			id, accountid, street, number, complement, neighborhood, city, state, country, zipcode, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (accountid) DO UPDATE SET
			street = EXCLUDED.street,
			number = EXCLUDED.number,
			complement = EXCLUDED.complement,
			neighborhood = EXCLUDED.neighborhood,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			country = EXCLUDED.country,
			zipcode = EXCLUDED.zipcode,
			updatedat = EXCLUDED.updatedat`

	now := time.Now()
	user.UpdatedAt = now

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_directory_repo_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	tag, err := transaction.Exec(context, updateAccount,
		user.ID,
		user.Email,
		user.Name,
		user.Document,
		user.Birthday,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_directory_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	if user.Address != nil {
		_, err = transaction.Exec(context, upsertAddress,
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
		)
		if err != nil {
			return fmt.Errorf("postgres_directory_repo_upsert_address_failed: %w", err)
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_directory_repo_commit_failed: %w", err)
	}

	return nil
}

/*
DeleteByID removes an account record; the FK cascade removes its address.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound when the account does not exist, or execution errors
*/
func (repository *PostgresDirectoryRepository) DeleteByID(context context.Context, id string) error {
	const query = "DELETE FROM users.account WHERE id = $1"

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_directory_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// # Scan Helpers

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDirectoryRow hydrates an account (and its optional address) from the
// shared directoryColumns projection.
func scanDirectoryRow(row rowScanner) (*auth.User, error) {
	user := &auth.User{}

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

	if addressID != nil {
		user.Address = &auth.Address{
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
