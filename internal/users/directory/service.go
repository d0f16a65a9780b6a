// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/identra/internal/platform/apperr"
	"github.com/taibuivan/identra/internal/platform/sec"
	"github.com/taibuivan/identra/internal/users/auth"
	"github.com/taibuivan/identra/pkg/uuidv7"
)

// # Definitions & Constructors

// Service orchestrates directory operations, enforcing the access policy
// before every storage call.
type Service struct {
	directoryRepository UserDirectoryRepository
	logger              *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(directoryRepo UserDirectoryRepository, logger *slog.Logger) *Service {
	return &Service{
		directoryRepository: directoryRepo,
		logger:              logger,
	}
}

// UpdateInput carries a partial update: nil fields are left untouched.
type UpdateInput struct {
	Email    *string
	Name     *string
	Document *string
	Birthday *time.Time
	Address  *auth.Address
}

// # Directory Operations

/*
ListAll returns the full account directory.

Description: Admin-only. A valid but under-privileged identity gets a
Forbidden outcome, distinct from the gate's Unauthorized.

Parameters:
  - context: context.Context
  - identity: *sec.AuthClaims (Verified caller identity)

Returns:
  - []*auth.User: All accounts, password hashes never serialized
  - error: apperr.Forbidden or storage errors
*/
func (service *Service) ListAll(context context.Context, identity *sec.AuthClaims) ([]*auth.User, error) {
	if !sec.CanListAllUsers(identity) {
		return nil, apperr.Forbidden("Administrator privileges required")
	}

	return service.directoryRepository.ListAll(context)
}

/*
GetByID returns a single account record.

Description: Permitted for the record's owner or an admin.

Parameters:
  - context: context.Context
  - identity: *sec.AuthClaims
  - id: string (Target account ID)

Returns:
  - *auth.User: The account projection
  - error: apperr.Forbidden, apperr.NotFound, or storage errors
*/
func (service *Service) GetByID(context context.Context, identity *sec.AuthClaims, id string) (*auth.User, error) {
	if !sec.CanReadUser(identity, id) {
		return nil, apperr.Forbidden("You do not have permission to access this user")
	}

	return service.directoryRepository.FindByID(context, id)
}

/*
Update applies a partial update to an account record.

Description: Permitted for the record's owner or an admin. Only supplied
fields are merged into the current record; an attached address is upserted
against the account's single owned address (created when absent, replaced
when present). Role and password are never touched here.

Parameters:
  - context: context.Context
  - identity: *sec.AuthClaims
  - id: string (Target account ID)
  - input: UpdateInput (Partial fields)

Returns:
  - *auth.User: The updated projection
  - error: apperr.Forbidden, apperr.NotFound, apperr.Conflict (email taken),
    or storage errors
*/
func (service *Service) Update(context context.Context, identity *sec.AuthClaims, id string, input UpdateInput) (*auth.User, error) {
	if !sec.CanUpdateUser(identity, id) {
		return nil, apperr.Forbidden("You do not have permission to modify this user")
	}

	user, err := service.directoryRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Document != nil {
		user.Document = input.Document
	}
	if input.Birthday != nil {
		user.Birthday = input.Birthday
	}
	if input.Address != nil {
		// Keep the existing row's identity so the upsert replaces in place.
		if user.Address != nil {
			input.Address.ID = user.Address.ID
		} else {
			input.Address.ID = uuidv7.New()
		}
		user.Address = input.Address
	}

	if err := service.directoryRepository.Update(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_updated",
		slog.String("user_id", id),
		slog.String("actor_id", identity.UserID()),
	)

	return user, nil
}

/*
DeleteByID removes an account record and its owned address.

Description: Admin-only. The address row disappears with the account
through the foreign-key cascade, leaving no orphans.

Parameters:
  - context: context.Context
  - identity: *sec.AuthClaims
  - id: string (Target account ID)

Returns:
  - error: apperr.Forbidden, apperr.NotFound, or storage errors
*/
func (service *Service) DeleteByID(context context.Context, identity *sec.AuthClaims, id string) error {
	if !sec.CanDeleteUser(identity) {
		return apperr.Forbidden("Administrator privileges required")
	}

	if err := service.directoryRepository.DeleteByID(context, id); err != nil {
		return err
	}

	service.logger.Info("user_deleted",
		slog.String("user_id", id),
		slog.String("actor_id", identity.UserID()),
	)

	return nil
}
