package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/google/uuid"
	"github.com/lista-de-compras/shopping-list-services/api/metrics"
	"github.com/lista-de-compras/shopping-list-services/db"
	"github.com/lista-de-compras/shopping-list-services/internal/authn"
	"github.com/lista-de-compras/shopping-list-services/models"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type RegisterPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetRequestPayload struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetConfirmPayload struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterService creates a new user with a bcrypt-hashed credential.
func RegisterService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		WriteResponse(w, http.StatusBadRequest, models.Response{
			Success:   0,
			ErrorCode: "invalid_payload",
		})
		return
	}

	if fieldErrors := validateStruct(payload); fieldErrors != nil {
		writeValidationErrors(w, fieldErrors)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		WriteResponse(w, http.StatusInternalServerError, models.Response{
			Success:   0,
			ErrorCode: "internal_error",
		})
		return
	}

	user, err := svc.DB.CreateUser(&models.User{
		Name:         payload.Name,
		Email:        payload.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			logger.Info().Msg("Registration rejected: email already in use")
			WriteResponse(w, http.StatusConflict, models.Response{
				Success:   0,
				ErrorCode: "email_taken",
				Errors:    map[string]string{"email": "is already registered"},
			})
			return
		}
		WriteStorageError(w, logger, err)
		return
	}

	logger.Info().Str("user_id", user.ID.String()).Msg("User registered successfully")
	WriteResponse(w, http.StatusCreated, models.Response{
		Success: 1,
		Message: "Account created successfully.",
		Data:    models.UserResponse{User: *user},
	})
}

// LoginService verifies the credential and issues a bearer token. Invalid
// email and invalid password produce the same response.
func LoginService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		WriteResponse(w, http.StatusBadRequest, models.Response{
			Success:   0,
			ErrorCode: "invalid_payload",
		})
		return
	}

	if fieldErrors := validateStruct(payload); fieldErrors != nil {
		writeValidationErrors(w, fieldErrors)
		return
	}

	if !allowAttempt(svc, w, r, "login:"+payload.Email) {
		return
	}

	user, err := svc.DB.GetUserByEmail(payload.Email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			writeInvalidCredentials(w, logger)
			return
		}
		WriteStorageError(w, logger, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)) != nil {
		writeInvalidCredentials(w, logger)
		return
	}

	token, err := authn.IssueToken(user, svc.Config.Auth.Secret, svc.Config.Auth.TokenTTL())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to issue token")
		WriteResponse(w, http.StatusInternalServerError, models.Response{
			Success:   0,
			ErrorCode: "internal_error",
		})
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
	logger.Info().Str("user_id", user.ID.String()).Msg("User logged in successfully")

	WriteResponse(w, http.StatusOK, models.Response{
		Success: 1,
		Data:    models.LoginResponse{Token: token, User: *user},
	})
}

// RequestPasswordResetService issues a single-use reset token and emails the
// reset link. Always answers 202 so the endpoint cannot be used to probe
// which emails are registered.
func RequestPasswordResetService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	var payload ResetRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		WriteResponse(w, http.StatusBadRequest, models.Response{
			Success:   0,
			ErrorCode: "invalid_payload",
		})
		return
	}

	if fieldErrors := validateStruct(payload); fieldErrors != nil {
		writeValidationErrors(w, fieldErrors)
		return
	}

	if !allowAttempt(svc, w, r, "reset:"+payload.Email) {
		return
	}

	accepted := models.Response{
		Success: 1,
		Message: "If that email is registered, a reset link has been sent.",
	}

	user, err := svc.DB.GetUserByEmail(payload.Email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			WriteResponse(w, http.StatusAccepted, accepted)
			return
		}
		WriteStorageError(w, logger, err)
		return
	}

	token := uuid.NewString()
	sentAt := time.Now().UTC()
	if err := svc.DB.SetResetToken(user.ID, token, sentAt); err != nil {
		WriteStorageError(w, logger, err)
		return
	}

	if _, err := svc.Email.SendEmail(r.Context(), buildResetEmail(svc, user, token)); err != nil {
		logger.Error().Err(err).Msg("Failed to send reset email")
		WriteResponse(w, http.StatusInternalServerError, models.Response{
			Success:   0,
			ErrorCode: "email_error",
			Message:   "Could not send the reset email, please try again.",
		})
		return
	}

	logger.Info().Str("user_id", user.ID.String()).Msg("Password reset email sent")
	WriteResponse(w, http.StatusAccepted, accepted)
}

// ConfirmPasswordResetService swaps the credential when presented with a
// valid, unexpired reset token. The token is cleared in the same write.
func ConfirmPasswordResetService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	var payload ResetConfirmPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		WriteResponse(w, http.StatusBadRequest, models.Response{
			Success:   0,
			ErrorCode: "invalid_payload",
		})
		return
	}

	if fieldErrors := validateStruct(payload); fieldErrors != nil {
		writeValidationErrors(w, fieldErrors)
		return
	}

	user, err := svc.DB.GetUserByResetToken(payload.Token)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			writeInvalidResetToken(w, logger)
			return
		}
		WriteStorageError(w, logger, err)
		return
	}

	if user.ResetPasswordSentAt == nil ||
		time.Since(*user.ResetPasswordSentAt) > svc.Config.Auth.ResetTokenTTL() {
		writeInvalidResetToken(w, logger)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		WriteResponse(w, http.StatusInternalServerError, models.Response{
			Success:   0,
			ErrorCode: "internal_error",
		})
		return
	}

	if err := svc.DB.UpdatePassword(user.ID, string(hash)); err != nil {
		WriteStorageError(w, logger, err)
		return
	}

	logger.Info().Str("user_id", user.ID.String()).Msg("Password reset completed")
	WriteResponse(w, http.StatusOK, models.Response{
		Success: 1,
		Message: "Password updated successfully.",
	})
}

// allowAttempt applies the rate limiter when one is configured. A limiter
// outage is logged and the request allowed through rather than locking
// everyone out.
func allowAttempt(svc *Service, w http.ResponseWriter, r *http.Request, subject string) bool {
	if svc.Limiter == nil {
		return true
	}

	logger := zerolog.Ctx(r.Context())

	allowed, err := svc.Limiter.Allow(r.Context(), subject)
	if err != nil {
		logger.Warn().Err(err).Msg("Rate limiter unavailable")
		return true
	}
	if !allowed {
		metrics.RateLimitedTotal.Inc()
		logger.Warn().Str("subject", subject).Msg("Rate limit exceeded")
		WriteResponse(w, http.StatusTooManyRequests, models.Response{
			Success:   0,
			ErrorCode: "rate_limited",
			Message:   "Too many attempts, please try again later.",
		})
		return false
	}
	return true
}

func writeInvalidCredentials(w http.ResponseWriter, logger *zerolog.Logger) {
	metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
	logger.Info().Msg("Login rejected: invalid credentials")
	WriteResponse(w, http.StatusUnauthorized, models.Response{
		Success:   0,
		ErrorCode: "invalid_credentials",
		Message:   "Invalid email or password.",
	})
}

func writeInvalidResetToken(w http.ResponseWriter, logger *zerolog.Logger) {
	logger.Info().Msg("Password reset rejected: invalid or expired token")
	WriteResponse(w, http.StatusUnprocessableEntity, models.Response{
		Success:   0,
		ErrorCode: "invalid_token",
		Errors:    map[string]string{"token": "is invalid or has expired"},
	})
}

func buildResetEmail(svc *Service, user *models.User, token string) *sesv2.SendEmailInput {
	link := fmt.Sprintf("%s?token=%s", svc.Config.Email.ResetURL, token)
	body := fmt.Sprintf(
		"Hello %s,\n\nSomeone requested a password reset for your shopping list account.\n"+
			"Follow this link to choose a new password:\n\n%s\n\n"+
			"The link expires in %s. If you did not ask for this, ignore this email.\n",
		user.Name, link, svc.Config.Auth.ResetTokenTTL())

	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(svc.Config.Email.FromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{user.Email},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String("Reset your shopping list password")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	}
}
