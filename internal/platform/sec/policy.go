// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Access Policy
//
// Pure predicates evaluated after authentication, given the verified identity
// and the target resource (a user id). Violations map to 403 Forbidden,
// distinct from 401 Unauthorized ("no valid identity").

// CanListAllUsers permits the full directory listing for admins only.
func CanListAllUsers(identity *AuthClaims) bool {
	return identity != nil && identity.Role.IsAdmin()
}

// CanReadUser permits reading a record for its owner or an admin.
func CanReadUser(identity *AuthClaims, targetID string) bool {
	if identity == nil {
		return false
	}
	return identity.Role.IsAdmin() || identity.Subject == targetID
}

// CanUpdateUser permits updating a record for its owner or an admin.
func CanUpdateUser(identity *AuthClaims, targetID string) bool {
	if identity == nil {
		return false
	}
	return identity.Role.IsAdmin() || identity.Subject == targetID
}

// CanDeleteUser permits deletion for admins only.
func CanDeleteUser(identity *AuthClaims) bool {
	return identity != nil && identity.Role.IsAdmin()
}
