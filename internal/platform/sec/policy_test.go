// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/identra/internal/platform/sec"
)

func identity(subject string, role sec.UserRole) *sec.AuthClaims {
	return &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		Role:             role,
	}
}

/*
TestAccessPolicy covers every predicate against admin, owner, and stranger
identities.
*/
func TestAccessPolicy(t *testing.T) {
	admin := identity("admin-1", sec.RoleAdmin)
	owner := identity("user-1", sec.RoleUser)
	stranger := identity("user-2", sec.RoleUser)

	tests := []struct {
		name     string
		check    func() bool
		expected bool
	}{
		{"list_admin", func() bool { return sec.CanListAllUsers(admin) }, true},
		{"list_member", func() bool { return sec.CanListAllUsers(owner) }, false},
		{"list_nil_identity", func() bool { return sec.CanListAllUsers(nil) }, false},

		{"read_own_record", func() bool { return sec.CanReadUser(owner, "user-1") }, true},
		{"read_other_record", func() bool { return sec.CanReadUser(stranger, "user-1") }, false},
		{"read_as_admin", func() bool { return sec.CanReadUser(admin, "user-1") }, true},

		{"update_own_record", func() bool { return sec.CanUpdateUser(owner, "user-1") }, true},
		{"update_other_record", func() bool { return sec.CanUpdateUser(stranger, "user-1") }, false},
		{"update_as_admin", func() bool { return sec.CanUpdateUser(admin, "user-1") }, true},

		{"delete_admin", func() bool { return sec.CanDeleteUser(admin) }, true},
		{"delete_owner", func() bool { return sec.CanDeleteUser(owner) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.check())
		})
	}
}
