// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
HTTP delivery layer for the account lifecycle.

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Bearer-token orchestration on the protected endpoints.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/identra/internal/platform/constants"
	"github.com/taibuivan/identra/internal/platform/middleware"
	requestutil "github.com/taibuivan/identra/internal/platform/request"
	"github.com/taibuivan/identra/internal/platform/respond"
	"github.com/taibuivan/identra/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register        : Creates a new account and returns a token.
//   - POST /login           : Authenticates and returns a token.
//   - POST /verify          : Resolves the bearer token to the current account.
//   - PATCH /change-password: Rotates the caller's password.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/verify", handler.verify)
		r.Patch("/change-password", handler.changePassword)
	})

	return router
}

// # Request Payloads

type addressPayload struct {
	Street       string  `json:"street"`
	Number       string  `json:"number"`
	Complement   *string `json:"complement"`
	Neighborhood string  `json:"neighborhood"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Country      string  `json:"country"`
	ZipCode      string  `json:"zip_code"`
}

type registerRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Name     string          `json:"name"`
	Document *string         `json:"document"`
	Birthday *string         `json:"birthday"`
	Address  *addressPayload `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// validateAddress applies the mandatory-field rules for an embedded address.
func validateAddress(validator *validate.Validator, address *addressPayload) {
	validator.
		Required("address.street", address.Street).
		Required("address.number", address.Number).
		Required("address.neighborhood", address.Neighborhood).
		Required("address.city", address.City).
		Required("address.state", address.State).
		Required("address.country", address.Country).
		Required("address.zip_code", address.ZipCode)
}

// toEntity converts the wire payload into the domain Address.
func (payload *addressPayload) toEntity() *Address {
	return &Address{
		Street:       payload.Street,
		Number:       payload.Number,
		Complement:   payload.Complement,
		Neighborhood: payload.Neighborhood,
		City:         payload.City,
		State:        payload.State,
		Country:      payload.Country,
		ZipCode:      payload.ZipCode,
	}
}

// parseBirthday converts an optional YYYY-MM-DD string into a time value.
// Validation has already confirmed the layout.
func parseBirthday(raw *string) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	parsed, err := time.Parse(validate.DateLayout, *raw)
	if err != nil {
		return nil
	}
	return &parsed
}

/*
register handles the creation of a new user account.

POST /auth/register

Request:
  - Body: registerRequest (Email, Password, Name, optional Document/Birthday/Address)

Response:
  - 200: AuthSession: Token and created user profile
  - 400: VALIDATION_ERROR: Bad input
  - 409: CONFLICT: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 6).
		Required(FieldName, input.Name).
		MinLen(FieldName, input.Name, 2)

	if input.Birthday != nil {
		validator.Date(FieldBirthday, *input.Birthday)
	}
	if input.Address != nil {
		validateAddress(validator, input.Address)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	registerInput := RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Document: input.Document,
		Birthday: parseBirthday(input.Birthday),
	}
	if input.Address != nil {
		registerInput.Address = input.Address.toEntity()
	}

	session, err := handler.authService.Register(request.Context(), registerInput)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
login authenticates a user and issues an identity token.

POST /auth/login

Response:
  - 200: AuthSession: Token and user profile
  - 401: UNAUTHORIZED: Invalid credentials (identical shape for unknown
    email and wrong password)
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
verify resolves the bearer token to the current account.

POST /auth/verify

Response:
  - 200: User: Public projection of the current account
  - 401: UNAUTHORIZED: No or invalid token
  - 404: NOT_FOUND: Account deleted after the token was issued
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.VerifyIdentity(request.Context(), identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{constants.FieldUser: user})
}

/*
changePassword updates the authenticated user's password.

PATCH /auth/change-password

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success: Password updated
  - 401: UNAUTHORIZED: Wrong current password or missing token
  - 400: VALIDATION_ERROR: Weak new password
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, 6)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		identity.UserID(),
		input.CurrentPassword,
		input.NewPassword,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		constants.FieldMessage: "Password updated successfully",
	})
}
