// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package directory implements administrative and self-service management of
user records: listing, reading, partial updates, and deletion.

Every operation is evaluated against the access policy (self-or-admin,
admin-only) before touching storage. The package reuses the account entity
owned by [auth] rather than defining a parallel projection.
*/
package directory

import (
	"context"

	"github.com/taibuivan/identra/internal/users/auth"
)

// # Storage Contracts

// UserDirectoryRepository abstracts the persistence layer backing the
// directory operations.
type UserDirectoryRepository interface {
	/*
		ListAll returns every account, ordered by creation time.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*auth.User: All accounts with their addresses hydrated
		  - error: Execution errors
	*/
	ListAll(context context.Context) ([]*auth.User, error)

	/*
		FindByID returns the account with the given ID, including its
		owned address.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *auth.User: Hydrated account entity
		  - error: apperr.NotFound, or execution errors
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update persists the merged account record. The attached address,
		when present, is upserted against the account's single owned
		address row.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Fully merged entity)

		Returns:
		  - error: apperr.Conflict on a duplicate email, or execution errors
	*/
	Update(context context.Context, user *auth.User) error

	/*
		DeleteByID removes the account; the owned address row goes with it
		through the FK cascade.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: apperr.NotFound when no row was deleted, or execution errors
	*/
	DeleteByID(context context.Context, id string) error
}
