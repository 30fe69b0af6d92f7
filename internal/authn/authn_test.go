package authn

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lista-de-compras/shopping-list-services/models"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func testUser() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Name:  "Ana",
		Email: "ana@example.com",
	}
}

func TestIssueAndParseToken(t *testing.T) {
	user := testUser()

	token, err := IssueToken(user, testSecret, time.Hour)
	assert.NoError(t, err, "should issue token without error")

	claims, err := ParseClaims(token, testSecret)
	assert.NoError(t, err, "should parse token without error")
	assert.Equal(t, user.ID.String(), claims.Subject, "subject should be the user id")
	assert.Equal(t, user.Email, claims.Email, "email claim should match")
	assert.Equal(t, user.Name, claims.Name, "name claim should match")
}

func TestParseClaims_WrongSecret(t *testing.T) {
	token, err := IssueToken(testUser(), testSecret, time.Hour)
	assert.NoError(t, err)

	_, err = ParseClaims(token, "another-secret")
	assert.ErrorIs(t, err, ErrInvalidJWT, "token signed with another secret should be rejected")
}

func TestParseClaims_ExpiredToken(t *testing.T) {
	token, err := IssueToken(testUser(), testSecret, -time.Minute)
	assert.NoError(t, err)

	_, err = ParseClaims(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidJWT, "expired token should be rejected")
}

func TestParseClaims_Garbage(t *testing.T) {
	_, err := ParseClaims("not-a-token", testSecret)
	assert.Error(t, err)
}
