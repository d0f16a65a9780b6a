// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/identra/internal/platform/apperr"
	"github.com/taibuivan/identra/internal/platform/sec"
	"github.com/taibuivan/identra/internal/users/auth"
	"github.com/taibuivan/identra/pkg/pointer"
	"github.com/taibuivan/identra/pkg/uuidv7"
)

// # Test Doubles

// memoryDirectoryRepository is an in-memory UserDirectoryRepository used to
// exercise the service without a live database.
type memoryDirectoryRepository struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemoryDirectoryRepository() *memoryDirectoryRepository {
	return &memoryDirectoryRepository{users: make(map[string]*auth.User)}
}

func (repo *memoryDirectoryRepository) seed(user *auth.User) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *user
	repo.users[user.ID] = &clone
}

func (repo *memoryDirectoryRepository) ListAll(_ context.Context) ([]*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	users := make([]*auth.User, 0, len(repo.users))
	for _, user := range repo.users {
		clone := *user
		users = append(users, &clone)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (repo *memoryDirectoryRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	user, ok := repo.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (repo *memoryDirectoryRepository) Update(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	for id, existing := range repo.users {
		if id != user.ID && existing.Email == user.Email {
			// Mirrors the unique-constraint mapping of the real store.
			return apperr.Conflict("Email is already registered")
		}
	}
	clone := *user
	repo.users[user.ID] = &clone
	return nil
}

func (repo *memoryDirectoryRepository) DeleteByID(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(repo.users, id)
	return nil
}

func newTestService(repo *memoryDirectoryRepository) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger)
}

func identityWithRole(userID string, role sec.UserRole) *sec.AuthClaims {
	return &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
		Role:             role,
	}
}

func seedUser(repo *memoryDirectoryRepository, email, name string, role sec.UserRole) *auth.User {
	user := &auth.User{
		ID:        uuidv7.New(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	repo.seed(user)
	return user
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, status, appErr.HTTPStatus)
}

// # Listing

func TestService_ListAll(t *testing.T) {
	repo := newMemoryDirectoryRepository()
	service := newTestService(repo)

	admin := seedUser(repo, "admin@example.com", "Admin", sec.RoleAdmin)
	member := seedUser(repo, "member@example.com", "Member", sec.RoleUser)

	t.Run("admin sees everyone", func(t *testing.T) {
		users, err := service.ListAll(context.Background(), identityWithRole(admin.ID, sec.RoleAdmin))
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		_, err := service.ListAll(context.Background(), identityWithRole(member.ID, sec.RoleUser))
		assertStatus(t, err, http.StatusForbidden)
	})
}

// # Reading

func TestService_GetByID(t *testing.T) {
	repo := newMemoryDirectoryRepository()
	service := newTestService(repo)

	admin := seedUser(repo, "admin@example.com", "Admin", sec.RoleAdmin)
	member := seedUser(repo, "member@example.com", "Member", sec.RoleUser)
	other := seedUser(repo, "other@example.com", "Other", sec.RoleUser)

	t.Run("owner reads own record", func(t *testing.T) {
		user, err := service.GetByID(context.Background(), identityWithRole(member.ID, sec.RoleUser), member.ID)
		require.NoError(t, err)
		assert.Equal(t, "member@example.com", user.Email)
	})

	t.Run("admin reads any record", func(t *testing.T) {
		user, err := service.GetByID(context.Background(), identityWithRole(admin.ID, sec.RoleAdmin), member.ID)
		require.NoError(t, err)
		assert.Equal(t, member.ID, user.ID)
	})

	t.Run("regular user cannot read another record", func(t *testing.T) {
		_, err := service.GetByID(context.Background(), identityWithRole(member.ID, sec.RoleUser), other.ID)
		assertStatus(t, err, http.StatusForbidden)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := service.GetByID(context.Background(), identityWithRole(admin.ID, sec.RoleAdmin), uuidv7.New())
		assert.True(t, apperr.IsNotFound(err))
	})
}

// # Updating

func TestService_Update(t *testing.T) {
	repo := newMemoryDirectoryRepository()
	service := newTestService(repo)

	admin := seedUser(repo, "admin@example.com", "Admin", sec.RoleAdmin)
	member := seedUser(repo, "member@example.com", "Member", sec.RoleUser)
	seedUser(repo, "taken@example.com", "Taken", sec.RoleUser)

	t.Run("partial merge only touches supplied fields", func(t *testing.T) {
		updated, err := service.Update(
			context.Background(),
			identityWithRole(member.ID, sec.RoleUser),
			member.ID,
			UpdateInput{Name: pointer.To("Renamed")},
		)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, "member@example.com", updated.Email)
	})

	t.Run("address upsert creates then replaces in place", func(t *testing.T) {
		first, err := service.Update(
			context.Background(),
			identityWithRole(member.ID, sec.RoleUser),
			member.ID,
			UpdateInput{Address: &auth.Address{Street: "First St", Number: "1", Neighborhood: "N", City: "C", State: "S", Country: "JP", ZipCode: "100-0001"}},
		)
		require.NoError(t, err)
		require.NotNil(t, first.Address)
		firstAddressID := first.Address.ID
		assert.NotEmpty(t, firstAddressID)

		second, err := service.Update(
			context.Background(),
			identityWithRole(member.ID, sec.RoleUser),
			member.ID,
			UpdateInput{Address: &auth.Address{Street: "Second St", Number: "2", Neighborhood: "N", City: "C", State: "S", Country: "JP", ZipCode: "100-0002"}},
		)
		require.NoError(t, err)
		require.NotNil(t, second.Address)

		// Replacement, never a second address.
		assert.Equal(t, firstAddressID, second.Address.ID)
		assert.Equal(t, "Second St", second.Address.Street)
	})

	t.Run("email change colliding with another account conflicts", func(t *testing.T) {
		_, err := service.Update(
			context.Background(),
			identityWithRole(member.ID, sec.RoleUser),
			member.ID,
			UpdateInput{Email: pointer.To("taken@example.com")},
		)
		assertStatus(t, err, http.StatusConflict)
	})

	t.Run("regular user cannot update another record", func(t *testing.T) {
		_, err := service.Update(
			context.Background(),
			identityWithRole(member.ID, sec.RoleUser),
			admin.ID,
			UpdateInput{Name: pointer.To("Hacked")},
		)
		assertStatus(t, err, http.StatusForbidden)
	})

	t.Run("admin updates any record", func(t *testing.T) {
		updated, err := service.Update(
			context.Background(),
			identityWithRole(admin.ID, sec.RoleAdmin),
			member.ID,
			UpdateInput{Document: pointer.To("12345678900")},
		)
		require.NoError(t, err)
		require.NotNil(t, updated.Document)
		assert.Equal(t, "12345678900", *updated.Document)
	})
}

// # Deletion

func TestService_DeleteByID(t *testing.T) {
	repo := newMemoryDirectoryRepository()
	service := newTestService(repo)

	admin := seedUser(repo, "admin@example.com", "Admin", sec.RoleAdmin)
	member := seedUser(repo, "member@example.com", "Member", sec.RoleUser)

	t.Run("regular user is forbidden even for own record", func(t *testing.T) {
		err := service.DeleteByID(context.Background(), identityWithRole(member.ID, sec.RoleUser), member.ID)
		assertStatus(t, err, http.StatusForbidden)
	})

	t.Run("admin deletes", func(t *testing.T) {
		err := service.DeleteByID(context.Background(), identityWithRole(admin.ID, sec.RoleAdmin), member.ID)
		require.NoError(t, err)

		_, err = service.GetByID(context.Background(), identityWithRole(admin.ID, sec.RoleAdmin), member.ID)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("unknown id", func(t *testing.T) {
		err := service.DeleteByID(context.Background(), identityWithRole(admin.ID, sec.RoleAdmin), uuidv7.New())
		assert.True(t, apperr.IsNotFound(err))
	})
}
