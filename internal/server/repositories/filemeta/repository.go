package filemeta

import (
	"context"

	"github.com/dmitrijs2005/cloudstore/internal/server/models"
)

// Repository persists file metadata. Uniqueness is enforced by the database:
// (owner_username, filename) composite and storage_path globally.
type Repository interface {
	Create(ctx context.Context, file *models.FileMetadata) (*models.FileMetadata, error)
	FindByOwnerAndFilename(ctx context.Context, owner string, filename string) (*models.FileMetadata, error)
	ListByOwner(ctx context.Context, owner string, limit int) ([]*models.FileMetadata, error)
	// UpdateFilename mutates only the filename; the storage path keeps
	// pointing at the same physical bytes.
	UpdateFilename(ctx context.Context, id string, newName string) error
	Delete(ctx context.Context, id string) error
}
