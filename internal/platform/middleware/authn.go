// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package middleware provides the HTTP middleware chain for the Identra API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthN, and CORS.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/identra/internal/platform/apperr"
	"github.com/taibuivan/identra/internal/platform/constants"
	"github.com/taibuivan/identra/internal/platform/ctxutil"
	"github.com/taibuivan/identra/internal/platform/respond"
	"github.com/taibuivan/identra/internal/platform/sec"
)

// invalidTokenMessage is the single external failure for every gate
// rejection past the header format check. A valid token whose account has
// vanished is indistinguishable from a bad signature.
const invalidTokenMessage = "Invalid or expired token"

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the [sec]
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// AccountSource confirms that the account named by a token subject still
// exists. The gate fails closed when it does not.
type AccountSource interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Authenticate extracts and verifies the bearer token from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous (protected groups reject via [RequireAuth]).
//  3. If present, the prefix must match "Bearer " exactly — case-sensitive, single space.
//  4. Verify the token via [TokenVerifier], then confirm the subject account
//     still exists via [AccountSource].
//  5. Inject the verified [*sec.AuthClaims] into the request context.
//
// The gate is evaluated exactly once per request and is side-effect-free
// except for the account lookup.
func Authenticate(verifier TokenVerifier, accounts AccountSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			// Exact prefix match: "bearer", extra spaces, or a missing token
			// all terminate the request here.
			if !strings.HasPrefix(authHeader, constants.BearerPrefix) {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			tokenStr := authHeader[len(constants.BearerPrefix):]
			if tokenStr == "" || strings.ContainsRune(tokenStr, ' ') {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized(invalidTokenMessage))
				return
			}

			// ── 4. Account Resolution ─────────────────────────────────────────
			exists, err := accounts.Exists(request.Context(), claims.UserID())
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
			if !exists {
				respond.Error(writer, request, apperr.Unauthorized(invalidTokenMessage))
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.AuthClaims] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetIdentity(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
