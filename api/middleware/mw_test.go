package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lista-de-compras/shopping-list-services/internal/authn"
	"github.com/lista-de-compras/shopping-list-services/models"
	"github.com/stretchr/testify/assert"
)

const testSecret = "mw-test-secret"

func TestJWTMiddleware_ValidToken_ClaimsPopulated(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Ana", Email: "ana@example.com"}
	token, err := authn.IssueToken(user, testSecret, time.Hour)
	assert.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(ClaimsKey).(authn.Claims)
		assert.True(t, ok, "claims should be present in context")
		assert.Equal(t, user.ID.String(), claims.Subject)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Add("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	JWTMiddleware(testSecret)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request without a token should not reach the handler")
	})

	req := httptest.NewRequest(http.MethodGet, "/items", nil)

	w := httptest.NewRecorder()
	JWTMiddleware(testSecret)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request with an invalid token should not reach the handler")
	})

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Add("Authorization", "Bearer invalid-token")

	w := httptest.NewRecorder()
	JWTMiddleware(testSecret)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestJWTMiddleware_TokenSignedWithOtherSecret(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Ana", Email: "ana@example.com"}
	token, err := authn.IssueToken(user, "another-secret", time.Hour)
	assert.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request with a foreign-signed token should not reach the handler")
	})

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Add("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	JWTMiddleware(testSecret)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}
