// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing, Access
// Policy) from the domain logic. It acts as an Infrastructure service injected
// into the Application layer via small interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a JWT access token.
//
// # Why custom claims?
//
// By embedding the email and role directly inside the JWT, the auth gate can
// reconstruct the caller's identity for policy checks without an extra query
// per request. The account id travels in the registered 'sub' claim.
type AuthClaims struct {
	jwt.RegisteredClaims

	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// UserID returns the account id carried in the subject claim.
func (c *AuthClaims) UserID() string {
	return c.Subject
}

// TokenService handles generation and verification of JWT tokens using HS256.
//
// The signing secret is process-wide configuration loaded once at startup.
// There is no rotation; one static secret for the process lifetime.
type TokenService struct {
	secret     []byte
	issuer     string
	timeToLive time.Duration
}

// NewTokenService creates a new TokenService.
//
// # Parameters
//   - secret: The shared HMAC signing secret.
//   - issuer: The 'iss' claim stamped on every token.
//   - timeToLive: The fixed validity window (expiry = issued-at + timeToLive).
func NewTokenService(secret, issuer string, timeToLive time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		timeToLive: timeToLive,
	}
}

// GenerateAccessToken creates a new signed JWT access token for a user.
func (service *TokenService) GenerateAccessToken(userID, email, role string) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.timeToLive)),
		},
		Email: email,
		Role:  UserRole(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a JWT string.
//
// It returns an error for malformed structure, signature mismatch, expired
// timestamps, unexpected signing algorithms, and payloads missing the subject
// or role claims. Callers must treat the error as a first-class outcome; the
// method never panics.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}

	// A payload without subject or role cannot be authorized against any policy.
	if claims.Subject == "" || claims.Role == "" {
		return nil, errors.New("sec: token missing required claims")
	}

	return claims, nil
}
