package users

import (
	"context"

	"github.com/dmitrijs2005/cloudstore/internal/server/models"
)

// Repository persists user accounts and their single session token slot.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByToken(ctx context.Context, token string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateToken sets the user's current session token; a nil token
	// clears the slot (logout).
	UpdateToken(ctx context.Context, userID string, token *string) error
}
