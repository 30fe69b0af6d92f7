package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/lista-de-compras/shopping-list-services/api/middleware"
	"github.com/lista-de-compras/shopping-list-services/internal/authn"
	"github.com/lista-de-compras/shopping-list-services/models"
	"github.com/rs/zerolog"
)

var validate = newValidator()

// newValidator builds the shared validator, reporting field names by their
// json tag so validation errors match the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func WriteResponse(w http.ResponseWriter, statusCode int, response interface{}, location ...string) {

	w.Header().Set("Content-Type", "application/json")

	// We don't want to cache API responses so the client receives most curent data
	w.Header().Set("Cache-Control", "max-age=0")

	// Conditionally set the Location header if provided
	if len(location) > 0 && location[0] != "" {
		w.Header().Set("Location", location[0])
	}

	w.WriteHeader(statusCode)

	if response != nil {
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
	}
}

// WriteStorageError logs the underlying database failure and returns a
// generic envelope so persistence details never reach the client.
func WriteStorageError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		logger.Error().Err(err).Str("pq_code", pqErr.Code.Name()).Msg("Database error")
	} else {
		logger.Error().Err(err).Msg("Database error")
	}

	WriteResponse(w, http.StatusInternalServerError, models.Response{
		Success:   0,
		ErrorCode: "storage_error",
		Message:   "Something went wrong, please try again.",
	})
}

// writeItemNotFound is the single not-found surface for items. An id that
// does not exist and an id owned by another user produce this same body.
func writeItemNotFound(w http.ResponseWriter) {
	WriteResponse(w, http.StatusNotFound, models.Response{
		Success:   0,
		ErrorCode: "not_found",
		Message:   "Item not found",
	})
}

func writeValidationErrors(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteResponse(w, http.StatusUnprocessableEntity, models.Response{
		Success:   0,
		ErrorCode: "validation_failed",
		Errors:    fieldErrors,
	})
}

// requireUser pulls the authenticated user id out of the request context.
// Writes the 401 response itself when no user can be resolved.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		logger.Warn().Msg("Unauthorized request: missing claims")
		WriteResponse(w, http.StatusUnauthorized, models.Response{
			Success:   0,
			ErrorCode: "unauthorized",
		})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		logger.Warn().Err(err).Msg("Unauthorized request: malformed subject claim")
		WriteResponse(w, http.StatusUnauthorized, models.Response{
			Success:   0,
			ErrorCode: "unauthorized",
		})
		return uuid.Nil, false
	}

	return userID, true
}

// validateStruct runs the shared validator and flattens failures into a
// field → message map. Returns nil when the payload is valid.
func validateStruct(payload interface{}) map[string]string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"payload": "is invalid"}
	}

	fieldErrors := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fieldErrors[fe.Field()] = fieldMessage(fe)
	}
	return fieldErrors
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
