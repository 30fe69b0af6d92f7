package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/lista-de-compras/shopping-list-services/db"
	"github.com/lista-de-compras/shopping-list-services/internal/authn"
	"github.com/lista-de-compras/shopping-list-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	assert.NoError(t, err)
	return httptest.NewRequest(method, target, bytes.NewReader(raw))
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestRegisterService(t *testing.T) {
	userID := uuid.New()

	mockDB := new(MockStore)
	mockDB.On("CreateUser", mock.MatchedBy(func(user *models.User) bool {
		// The stored credential must be a hash, never the raw password
		return user.Email == "alice@example.com" &&
			user.PasswordHash != "password123" &&
			bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")) == nil
	})).Return(&models.User{ID: userID, Name: "Alice", Email: "alice@example.com"}, nil)

	svc := &Service{Config: testConfig(), DB: mockDB}

	r := jsonRequest(t, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Alice", "email": "alice@example.com", "password": "password123"})
	w := httptest.NewRecorder()
	RegisterService(svc, w, r)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)

	var resp struct {
		Success int                 `json:"success"`
		Data    models.UserResponse `json:"data"`
	}
	decodeResponse(t, w, &resp)
	assert.Equal(t, 1, resp.Success)
	assert.Equal(t, "alice@example.com", resp.Data.User.Email)

	mockDB.AssertExpectations(t)
}

func TestRegisterService_DuplicateEmail(t *testing.T) {
	mockDB := new(MockStore)
	mockDB.On("CreateUser", mock.Anything).Return(nil, db.ErrEmailTaken)

	svc := &Service{Config: testConfig(), DB: mockDB}

	r := jsonRequest(t, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Alice", "email": "alice@example.com", "password": "password123"})
	w := httptest.NewRecorder()
	RegisterService(svc, w, r)

	assert.Equal(t, http.StatusConflict, w.Result().StatusCode)

	var resp models.Response
	decodeResponse(t, w, &resp)
	assert.Equal(t, "email_taken", resp.ErrorCode)
	assert.Contains(t, resp.Errors, "email")
}

func TestRegisterService_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]string
		field   string
	}{
		{"missing name", map[string]string{"email": "a@example.com", "password": "password123"}, "name"},
		{"bad email", map[string]string{"name": "A", "email": "not-an-email", "password": "password123"}, "email"},
		{"short password", map[string]string{"name": "A", "email": "a@example.com", "password": "short"}, "password"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockDB := new(MockStore)
			svc := &Service{Config: testConfig(), DB: mockDB}

			r := jsonRequest(t, http.MethodPost, "/api/auth/register", tc.payload)
			w := httptest.NewRecorder()
			RegisterService(svc, w, r)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Result().StatusCode)

			var resp models.Response
			decodeResponse(t, w, &resp)
			assert.Contains(t, resp.Errors, tc.field)

			mockDB.AssertNotCalled(t, "CreateUser", mock.Anything)
		})
	}
}

func TestLoginService(t *testing.T) {
	userID := uuid.New()
	user := &models.User{
		ID:           userID,
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "password123"),
	}

	mockDB := new(MockStore)
	mockDB.On("GetUserByEmail", "alice@example.com").Return(user, nil)

	svc := &Service{Config: testConfig(), DB: mockDB}

	r := jsonRequest(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "alice@example.com", "password": "password123"})
	w := httptest.NewRecorder()
	LoginService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)

	var resp struct {
		Success int                  `json:"success"`
		Data    models.LoginResponse `json:"data"`
	}
	decodeResponse(t, w, &resp)
	assert.Equal(t, 1, resp.Success)
	assert.NotEmpty(t, resp.Data.Token)
	assert.Equal(t, "alice@example.com", resp.Data.User.Email)

	// The issued token must verify against the configured secret and
	// identify the user.
	claims, err := authn.ParseClaims(resp.Data.Token, testConfig().Auth.Secret)
	assert.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)

	mockDB.AssertExpectations(t)
}

func TestLoginService_InvalidCredentials(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "password123"),
	}

	// A wrong password and an unknown email must be indistinguishable.
	wrongPassword := func() *httptest.ResponseRecorder {
		mockDB := new(MockStore)
		mockDB.On("GetUserByEmail", "alice@example.com").Return(user, nil)
		svc := &Service{Config: testConfig(), DB: mockDB}
		w := httptest.NewRecorder()
		LoginService(svc, w, jsonRequest(t, http.MethodPost, "/api/auth/login",
			map[string]string{"email": "alice@example.com", "password": "wrong-password"}))
		return w
	}()

	unknownEmail := func() *httptest.ResponseRecorder {
		mockDB := new(MockStore)
		mockDB.On("GetUserByEmail", "nobody@example.com").Return(nil, db.ErrUserNotFound)
		svc := &Service{Config: testConfig(), DB: mockDB}
		w := httptest.NewRecorder()
		LoginService(svc, w, jsonRequest(t, http.MethodPost, "/api/auth/login",
			map[string]string{"email": "nobody@example.com", "password": "password123"}))
		return w
	}()

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Result().StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Result().StatusCode)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginService_RateLimited(t *testing.T) {
	mockDB := new(MockStore)
	mockLimiter := new(MockRateLimiter)
	mockLimiter.On("Allow", mock.Anything, "login:alice@example.com").Return(false, nil)

	svc := &Service{Config: testConfig(), DB: mockDB, Limiter: mockLimiter}

	r := jsonRequest(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "alice@example.com", "password": "password123"})
	w := httptest.NewRecorder()
	LoginService(svc, w, r)

	assert.Equal(t, http.StatusTooManyRequests, w.Result().StatusCode)

	var resp models.Response
	decodeResponse(t, w, &resp)
	assert.Equal(t, "rate_limited", resp.ErrorCode)

	mockDB.AssertNotCalled(t, "GetUserByEmail", mock.Anything)
	mockLimiter.AssertExpectations(t)
}

func TestLoginService_LimiterOutageFailsOpen(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "password123"),
	}

	mockDB := new(MockStore)
	mockDB.On("GetUserByEmail", "alice@example.com").Return(user, nil)
	mockLimiter := new(MockRateLimiter)
	mockLimiter.On("Allow", mock.Anything, mock.Anything).Return(false, assert.AnError)

	svc := &Service{Config: testConfig(), DB: mockDB, Limiter: mockLimiter}

	r := jsonRequest(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "alice@example.com", "password": "password123"})
	w := httptest.NewRecorder()
	LoginService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestRequestPasswordResetService(t *testing.T) {
	userID := uuid.New()
	user := &models.User{ID: userID, Name: "Alice", Email: "alice@example.com"}

	mockDB := new(MockStore)
	mockDB.On("GetUserByEmail", "alice@example.com").Return(user, nil)
	mockDB.On("SetResetToken", userID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	mockEmail := new(MockEmailClient)
	mockEmail.On("SendEmail", mock.Anything, mock.MatchedBy(func(input *sesv2.SendEmailInput) bool {
		return len(input.Destination.ToAddresses) == 1 &&
			input.Destination.ToAddresses[0] == "alice@example.com" &&
			*input.FromEmailAddress == "no-reply@example.com"
	}), mock.Anything).Return(&sesv2.SendEmailOutput{}, nil)

	svc := &Service{Config: testConfig(), DB: mockDB, Email: mockEmail}

	r := jsonRequest(t, http.MethodPost, "/api/auth/password-reset/request",
		map[string]string{"email": "alice@example.com"})
	w := httptest.NewRecorder()
	RequestPasswordResetService(svc, w, r)

	assert.Equal(t, http.StatusAccepted, w.Result().StatusCode)

	mockDB.AssertExpectations(t)
	mockEmail.AssertExpectations(t)
}

func TestRequestPasswordResetService_UnknownEmail(t *testing.T) {
	mockDB := new(MockStore)
	mockDB.On("GetUserByEmail", "nobody@example.com").Return(nil, db.ErrUserNotFound)
	mockEmail := new(MockEmailClient)

	svc := &Service{Config: testConfig(), DB: mockDB, Email: mockEmail}

	r := jsonRequest(t, http.MethodPost, "/api/auth/password-reset/request",
		map[string]string{"email": "nobody@example.com"})
	w := httptest.NewRecorder()
	RequestPasswordResetService(svc, w, r)

	// Same answer as a known email so registrations cannot be probed
	assert.Equal(t, http.StatusAccepted, w.Result().StatusCode)
	mockEmail.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmPasswordResetService(t *testing.T) {
	userID := uuid.New()
	sentAt := time.Now().UTC().Add(-30 * time.Minute)
	token := uuid.NewString()
	user := &models.User{
		ID:                  userID,
		Email:               "alice@example.com",
		ResetPasswordToken:  &token,
		ResetPasswordSentAt: &sentAt,
	}

	mockDB := new(MockStore)
	mockDB.On("GetUserByResetToken", token).Return(user, nil)
	mockDB.On("UpdatePassword", userID, mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-password-1")) == nil
	})).Return(nil)

	svc := &Service{Config: testConfig(), DB: mockDB}

	r := jsonRequest(t, http.MethodPost, "/api/auth/password-reset/confirm",
		map[string]string{"token": token, "password": "new-password-1"})
	w := httptest.NewRecorder()
	ConfirmPasswordResetService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestConfirmPasswordResetService_ExpiredToken(t *testing.T) {
	userID := uuid.New()
	sentAt := time.Now().UTC().Add(-3 * time.Hour)
	token := uuid.NewString()
	user := &models.User{
		ID:                  userID,
		ResetPasswordToken:  &token,
		ResetPasswordSentAt: &sentAt,
	}

	mockDB := new(MockStore)
	mockDB.On("GetUserByResetToken", token).Return(user, nil)

	svc := &Service{Config: testConfig(), DB: mockDB}

	r := jsonRequest(t, http.MethodPost, "/api/auth/password-reset/confirm",
		map[string]string{"token": token, "password": "new-password-1"})
	w := httptest.NewRecorder()
	ConfirmPasswordResetService(svc, w, r)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Result().StatusCode)

	var resp models.Response
	decodeResponse(t, w, &resp)
	assert.Equal(t, "invalid_token", resp.ErrorCode)

	mockDB.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything)
}

func TestConfirmPasswordResetService_UnknownToken(t *testing.T) {
	mockDB := new(MockStore)
	mockDB.On("GetUserByResetToken", "bogus").Return(nil, db.ErrUserNotFound)

	svc := &Service{Config: testConfig(), DB: mockDB}

	r := jsonRequest(t, http.MethodPost, "/api/auth/password-reset/confirm",
		map[string]string{"token": "bogus", "password": "new-password-1"})
	w := httptest.NewRecorder()
	ConfirmPasswordResetService(svc, w, r)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Result().StatusCode)
}
