// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
HTTP delivery layer for the user directory.

Every endpoint sits behind the authentication requirement; the finer
self-or-admin decisions belong to [Service] and the access policy, not to
this layer.
*/
package directory

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/identra/internal/platform/constants"
	"github.com/taibuivan/identra/internal/platform/middleware"
	requestutil "github.com/taibuivan/identra/internal/platform/request"
	"github.com/taibuivan/identra/internal/platform/respond"
	"github.com/taibuivan/identra/internal/platform/validate"
	"github.com/taibuivan/identra/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements the user-directory HTTP endpoints.
type Handler struct {
	directoryService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{directoryService: service}
}

// Routes returns a [chi.Router] configured with directory-specific routes.
//
// # Endpoints
//   - GET /          : Lists every account (admin only).
//   - GET /{id}      : Reads one account (self or admin).
//   - PATCH /{id}    : Partially updates one account (self or admin).
//   - DELETE /{id}   : Removes one account (admin only).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Patch("/{id}", handler.update)
	router.Delete("/{id}", handler.remove)

	return router
}

// # Request Payloads

type updateAddressPayload struct {
	Street       string  `json:"street"`
	Number       string  `json:"number"`
	Complement   *string `json:"complement"`
	Neighborhood string  `json:"neighborhood"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Country      string  `json:"country"`
	ZipCode      string  `json:"zip_code"`
}

type updateUserRequest struct {
	Email    *string               `json:"email"`
	Name     *string               `json:"name"`
	Document *string               `json:"document"`
	Birthday *string               `json:"birthday"`
	Address  *updateAddressPayload `json:"address"`
}

/*
list returns the full account directory.

GET /users

Response:
  - 200: []User: All accounts
  - 401: UNAUTHORIZED: No valid identity
  - 403: FORBIDDEN: Caller is not an admin
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	users, err := handler.directoryService.ListAll(request.Context(), identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, users)
}

/*
get returns a single account record.

GET /users/{id}

Response:
  - 200: User: The account projection
  - 403: FORBIDDEN: Not the owner and not an admin
  - 404: NOT_FOUND: Unknown account ID
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := chi.URLParam(request, "id")

	validator := &validate.Validator{}
	if err := validator.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.directoryService.GetByID(request.Context(), identity, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
update applies a partial update to an account record.

PATCH /users/{id}

Request:
  - Body: updateUserRequest (any subset of email, name, document, birthday, address)

Response:
  - 200: User: Updated projection
  - 400: VALIDATION_ERROR: Bad input
  - 403: FORBIDDEN: Not the owner and not an admin
  - 404: NOT_FOUND: Unknown account ID
  - 409: CONFLICT: Email already taken by another account
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := chi.URLParam(request, "id")

	var input updateUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.UUID("id", id)

	if input.Email != nil {
		validator.Required(auth.FieldEmail, *input.Email).Email(auth.FieldEmail, *input.Email)
	}
	if input.Name != nil {
		validator.Required(auth.FieldName, *input.Name).MinLen(auth.FieldName, *input.Name, 2)
	}
	if input.Birthday != nil {
		validator.Date(auth.FieldBirthday, *input.Birthday)
	}
	if input.Address != nil {
		validator.
			Required("address.street", input.Address.Street).
			Required("address.number", input.Address.Number).
			Required("address.neighborhood", input.Address.Neighborhood).
			Required("address.city", input.Address.City).
			Required("address.state", input.Address.State).
			Required("address.country", input.Address.Country).
			Required("address.zip_code", input.Address.ZipCode)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updateInput := UpdateInput{
		Email:    input.Email,
		Name:     input.Name,
		Document: input.Document,
	}
	if input.Birthday != nil && *input.Birthday != "" {
		parsed, err := time.Parse(validate.DateLayout, *input.Birthday)
		if err == nil {
			updateInput.Birthday = &parsed
		}
	}
	if input.Address != nil {
		updateInput.Address = &auth.Address{
			Street:       input.Address.Street,
			Number:       input.Address.Number,
			Complement:   input.Address.Complement,
			Neighborhood: input.Address.Neighborhood,
			City:         input.Address.City,
			State:        input.Address.State,
			Country:      input.Address.Country,
			ZipCode:      input.Address.ZipCode,
		}
	}

	user, err := handler.directoryService.Update(request.Context(), identity, id, updateInput)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
remove deletes an account record and its owned address.

DELETE /users/{id}

Response:
  - 200: Success: User deleted
  - 403: FORBIDDEN: Caller is not an admin
  - 404: NOT_FOUND: Unknown account ID
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := chi.URLParam(request, "id")

	validator := &validate.Validator{}
	if err := validator.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.directoryService.DeleteByID(request.Context(), identity, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		constants.FieldMessage: "User deleted successfully",
	})
}
