package services

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/lista-de-compras/shopping-list-services/internal/appconfig"
	"github.com/lista-de-compras/shopping-list-services/models"
)

// Store is the persistence surface the services depend on, implemented by
// db.ShoppingDB and mocked in tests.
type Store interface {
	CreateUser(req *models.User) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(userID uuid.UUID) (*models.User, error)
	GetUserByResetToken(token string) (*models.User, error)
	SetResetToken(userID uuid.UUID, token string, sentAt time.Time) error
	UpdatePassword(userID uuid.UUID, passwordHash string) error

	GetItems(userID uuid.UUID) ([]models.Item, error)
	GetItem(itemID, userID uuid.UUID) (*models.Item, error)
	CreateItem(req *models.Item) (*models.Item, error)
	UpdateItem(item *models.Item) (*models.Item, error)
	DeleteItem(itemID, userID uuid.UUID) error
	PurgeCompletedItems(userID uuid.UUID) (int64, error)
}

// EmailClient matches the SESv2 SendEmail signature.
type EmailClient interface {
	SendEmail(ctx context.Context, input *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// RateLimiter bounds authentication attempts per subject.
type RateLimiter interface {
	Allow(ctx context.Context, subject string) (bool, error)
}

// Service contains all shared dependencies for handlers.
type Service struct {
	Config  *appconfig.Config
	DB      Store
	Email   EmailClient
	Limiter RateLimiter
}
