// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/identra/internal/platform/apperr"
	"github.com/taibuivan/identra/internal/platform/sec"
	"github.com/taibuivan/identra/pkg/uuidv7"
)

// invalidCredentialsMessage is shared by every login failure so that an
// unknown email and a wrong password are externally indistinguishable.
const invalidCredentialsMessage = "Invalid login credentials"

// # Contracts & Types

// TokenProvider defines the contract for issuing identity tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed token string for the given account.
	//
	// # Parameters
	//   - userID: The ID of the account (token subject).
	//   - email: The email of the account.
	//   - role: The role of the account.
	//
	// # Returns
	//   - A signed token string, or an error if signing fails.
	GenerateAccessToken(userID, email, role string) (string, error)
}

// Service implements the account lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	logger         *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(userRepo UserRepository, tokenProv TokenProvider, logger *slog.Logger) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		logger:         logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Document *string
	Birthday *time.Time
	Address  *Address
}

// AuthSession pairs a freshly issued token with the account it identifies.
type AuthSession struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Checks email uniqueness, hashes the password, persists the
account together with its optional address atomically, and issues an
identity token for the newly created account.

The uniqueness check here is a friendly precondition; the actual guard
against two concurrent registrations is the unique constraint on email,
which the repository maps to the same Conflict.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *AuthSession: Token plus the created account
  - error: apperr.Conflict (if email exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*AuthSession, error) {

	// Verify email uniqueness. Return a client-safe Conflict error.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuidv7.New(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
		Document:     input.Document,
		Birthday:     input.Birthday,
		Address:      input.Address,
	}

	if user.Address != nil {
		user.Address.ID = uuidv7.New()
	}

	// Persist account + address as one unit; duplicate emails surface here
	// as Conflict when two registrations race past the precondition.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	token, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.Info("user_registered", slog.String("user_id", user.ID))

	return &AuthSession{Token: token, User: user}, nil
}

// # Authentication Flow

/*
Login validates user credentials and issues an identity token.

Description: Looks the account up by email and performs a constant-time
password comparison. An absent account and a failed password check produce
the identical error shape to resist user enumeration.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *AuthSession: Token plus the authenticated account
  - error: apperr.Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, email, password string) (*AuthSession, error) {
	user, err := service.userRepository.FindByEmail(context, email)

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized(invalidCredentialsMessage)
	}

	// bcrypt compares in constant time to prevent timing attacks.
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized(invalidCredentialsMessage)
	}

	token, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &AuthSession{Token: token, User: user}, nil
}

// # Identity Verification

/*
VerifyIdentity resolves a verified token payload to the current account.

Description: The auth gate has already checked signature, expiry, and
account existence; this re-reads the account so the response reflects the
latest profile state.

Parameters:
  - context: context.Context
  - identity: *sec.AuthClaims

Returns:
  - *User: Public projection of the current account
  - error: apperr.NotFound when the account has vanished since the gate ran
*/
func (service *Service) VerifyIdentity(context context.Context, identity *sec.AuthClaims) (*User, error) {
	user, err := service.userRepository.FindByID(context, identity.UserID())
	if err != nil {
		return nil, err
	}
	return user, nil
}

// # Password Management

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Re-verifies the current password against the stored hash
before allowing the update; on success only the password hash is touched.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: apperr.Unauthorized on a wrong current password, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {

	// Fetch user by ID
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	// Hash the brand new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	// Update the database with the new hash; no other fields are touched.
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	service.logger.Info("user_password_changed", slog.String("user_id", userID))

	return nil
}
