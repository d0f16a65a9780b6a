// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/identra/internal/platform/ctxutil"
)

func newTestHandler(t *testing.T) (*Handler, *memoryUserRepository) {
	t.Helper()
	repo := newMemoryUserRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(repo, staticTokenProvider{}, logger)
	return NewHandler(service), repo
}

func performJSON(t *testing.T, handler http.Handler, method, target, body string, identity string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if identity != "" {
		request = request.WithContext(ctxutil.WithIdentity(request.Context(), identityFor(identity)))
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestHandler_Register(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := handler.Routes()

	t.Run("creates account with address", func(t *testing.T) {
		body := `{
			"email": "mina@example.com",
			"password": "sup3rsecret",
			"name": "Mina Okabe",
			"birthday": "1994-03-21",
			"address": {
				"street": "Main St",
				"number": "100",
				"neighborhood": "Centro",
				"city": "Osaka",
				"state": "OS",
				"country": "JP",
				"zip_code": "530-0001"
			}
		}`

		recorder := performJSON(t, router, http.MethodPost, "/register", body, "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var envelope struct {
			Data AuthSession `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.NotEmpty(t, envelope.Data.Token)
		assert.Equal(t, "mina@example.com", envelope.Data.User.Email)
		require.NotNil(t, envelope.Data.User.Address)
		assert.Equal(t, "Osaka", envelope.Data.User.Address.City)

		// The stored hash must never appear on the wire.
		assert.NotContains(t, recorder.Body.String(), "password")
	})

	t.Run("rejects weak password and short name", func(t *testing.T) {
		body := `{"email": "a@example.com", "password": "12345", "name": "A"}`

		recorder := performJSON(t, router, http.MethodPost, "/register", body, "")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("rejects malformed birthday", func(t *testing.T) {
		body := `{"email": "b@example.com", "password": "password1", "name": "Bo", "birthday": "21-03-1994"}`

		recorder := performJSON(t, router, http.MethodPost, "/register", body, "")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		body := `{"email": "dup@example.com", "password": "password1", "name": "First"}`
		recorder := performJSON(t, router, http.MethodPost, "/register", body, "")
		require.Equal(t, http.StatusOK, recorder.Code)

		recorder = performJSON(t, router, http.MethodPost, "/register", body, "")
		assert.Equal(t, http.StatusConflict, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Email is already registered")
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		recorder := performJSON(t, router, http.MethodPost, "/register", `{"email":`, "")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestHandler_Login(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := handler.Routes()

	registerBody := `{"email": "kenji@example.com", "password": "correct-horse", "name": "Kenji"}`
	recorder := performJSON(t, router, http.MethodPost, "/register", registerBody, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	t.Run("valid credentials", func(t *testing.T) {
		body := `{"email": "kenji@example.com", "password": "correct-horse"}`
		recorder := performJSON(t, router, http.MethodPost, "/login", body, "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var envelope struct {
			Data AuthSession `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.NotEmpty(t, envelope.Data.Token)
		assert.Equal(t, "kenji@example.com", envelope.Data.User.Email)
	})

	t.Run("failure responses are identical for both causes", func(t *testing.T) {
		unknownEmail := performJSON(t, router, http.MethodPost, "/login",
			`{"email": "ghost@example.com", "password": "correct-horse"}`, "")
		wrongPassword := performJSON(t, router, http.MethodPost, "/login",
			`{"email": "kenji@example.com", "password": "wrong"}`, "")

		assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.JSONEq(t, unknownEmail.Body.String(), wrongPassword.Body.String())
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		recorder := performJSON(t, router, http.MethodPost, "/login", `{"email": "kenji@example.com"}`, "")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestHandler_Verify(t *testing.T) {
	handler, repo := newTestHandler(t)
	router := handler.Routes()

	registerBody := `{"email": "aya@example.com", "password": "password1", "name": "Aya"}`
	recorder := performJSON(t, router, http.MethodPost, "/register", registerBody, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data AuthSession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	userID := envelope.Data.User.ID

	t.Run("returns current account", func(t *testing.T) {
		recorder := performJSON(t, router, http.MethodPost, "/verify", "", userID)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "aya@example.com")
	})

	t.Run("anonymous request is blocked", func(t *testing.T) {
		recorder := performJSON(t, router, http.MethodPost, "/verify", "", "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("account deleted after token issuance", func(t *testing.T) {
		delete(repo.users, userID)
		recorder := performJSON(t, router, http.MethodPost, "/verify", "", userID)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestHandler_ChangePassword(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := handler.Routes()

	registerBody := `{"email": "riku@example.com", "password": "old-password", "name": "Riku"}`
	recorder := performJSON(t, router, http.MethodPost, "/register", registerBody, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data AuthSession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	userID := envelope.Data.User.ID

	t.Run("requires authentication", func(t *testing.T) {
		body := `{"current_password": "old-password", "new_password": "new-password"}`
		recorder := performJSON(t, router, http.MethodPatch, "/change-password", body, "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("rejects short new password", func(t *testing.T) {
		body := `{"current_password": "old-password", "new_password": "tiny"}`
		recorder := performJSON(t, router, http.MethodPatch, "/change-password", body, userID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("wrong current password", func(t *testing.T) {
		body := `{"current_password": "not-the-one", "new_password": "new-password"}`
		recorder := performJSON(t, router, http.MethodPatch, "/change-password", body, userID)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Current password is incorrect")
	})

	t.Run("rotates the password", func(t *testing.T) {
		body := `{"current_password": "old-password", "new_password": "new-password"}`
		recorder := performJSON(t, router, http.MethodPatch, "/change-password", body, userID)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Password updated successfully")

		loginOld := performJSON(t, router, http.MethodPost, "/login",
			`{"email": "riku@example.com", "password": "old-password"}`, "")
		assert.Equal(t, http.StatusUnauthorized, loginOld.Code)

		loginNew := performJSON(t, router, http.MethodPost, "/login",
			`{"email": "riku@example.com", "password": "new-password"}`, "")
		assert.Equal(t, http.StatusOK, loginNew.Code)
	})
}
