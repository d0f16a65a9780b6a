// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted access: full directory listing, updates, and deletion
	RoleAdmin UserRole = "ADMIN"

	// Default role for standard registered accounts
	RoleUser UserRole = "USER"
)

// IsAdmin reports whether the role carries administrative privileges.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// Valid reports whether the role is one of the enumerated values.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}
