// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the account lifecycle and authentication layer.

It defines the core domain entities (User, Address) and the logic for
registration, login, token verification, and password change.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no
transport dependencies and encapsulate all business rules related to user
identity.
*/
package auth

import (
	"time"

	"github.com/taibuivan/identra/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account.
//
// The same struct doubles as the public projection: the password hash is
// excluded from every serialization, so no handler can leak it.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	Document     *string      `json:"document,omitempty"`
	Birthday     *time.Time   `json:"birthday,omitempty"`
	Address      *Address     `json:"address,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Address is the single postal address owned by exactly one account.
// Its lifecycle is tied to the owner: created/updated alongside it and
// removed when the account is deleted.
type Address struct {
	ID           string  `json:"id"`
	Street       string  `json:"street"`
	Number       string  `json:"number"`
	Complement   *string `json:"complement,omitempty"`
	Neighborhood string  `json:"neighborhood"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Country      string  `json:"country"`
	ZipCode      string  `json:"zip_code"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail           = "email"
	FieldName            = "name"
	FieldPassword        = "password"
	FieldDocument        = "document"
	FieldBirthday        = "birthday"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
)
