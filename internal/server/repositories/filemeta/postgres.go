package filemeta

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/dbx"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.FileMetadata) (*models.FileMetadata, error) {
	query :=
		`INSERT INTO files (filename, size, owner_username, storage_path, mime_type)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		file.Filename, file.Size, file.OwnerUsername, file.StoragePath, file.MimeType).
		Scan(&file.ID)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

func (r *PostgresRepository) FindByOwnerAndFilename(ctx context.Context, owner string, filename string) (*models.FileMetadata, error) {
	query :=
		`SELECT id, filename, size, owner_username, storage_path, mime_type FROM files
		 WHERE owner_username = $1 AND filename = $2
		 `

	file := &models.FileMetadata{}
	err := r.db.QueryRowContext(ctx, query, owner, filename).
		Scan(&file.ID, &file.Filename, &file.Size, &file.OwnerUsername, &file.StoragePath, &file.MimeType)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string, limit int) ([]*models.FileMetadata, error) {
	query :=
		`SELECT id, filename, size, owner_username, storage_path, mime_type FROM files
		 WHERE owner_username = $1
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.FileMetadata
	for rows.Next() {
		var item models.FileMetadata
		if err := rows.Scan(&item.ID, &item.Filename, &item.Size, &item.OwnerUsername, &item.StoragePath, &item.MimeType); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) UpdateFilename(ctx context.Context, id string, newName string) error {
	query := `UPDATE files SET filename = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, newName)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}
