package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/dbx"
	"github.com/dmitrijs2005/cloudstore/internal/logging"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cloudstore/internal/server/storage"
	"github.com/google/uuid"
)

// FileService orchestrates the file-storage lifecycle: every metadata record
// must have exactly one readable blob behind it. An orphan blob (bytes with
// no record) is a tolerated failure state; orphan metadata is not.
//
// All operations take the caller's resolved owner identity explicitly; the
// service never reads identity from ambient state.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       storage.BlobStore
	logger      logging.Logger
}

// NewFileService constructs a FileService over the metadata repositories
// and a blob store.
func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore, logger logging.Logger) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("module", "file_service"),
	}
}

// storageName derives a globally unique blob name. It is never built from
// the user-supplied filename, so concurrent uploads cannot collide on disk.
func storageName(owner string) string {
	return owner + "_" + uuid.NewString()
}

// Upload stores the payload under a fresh storage path and then persists
// the metadata record. Bytes are written first: a crash in between leaves
// an orphan blob rather than metadata with no backing bytes.
func (s *FileService) Upload(ctx context.Context, owner string, filename string, r io.Reader, size int64, mimeType string) error {
	if filename == "" || size <= 0 {
		return fmt.Errorf("%w: file or filename is missing", common.ErrorValidation)
	}

	repo := s.repomanager.Files(s.db)

	// Convenience pre-check; the (owner, filename) unique constraint is
	// the real guard under concurrency.
	_, err := repo.FindByOwnerAndFilename(ctx, owner, filename)
	if err == nil {
		s.logger.Warn(ctx, "file already exists", "owner", owner, "filename", filename)
		return common.ErrorAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error checking file: %w", err)
	}

	path, written, err := s.blobs.Save(storageName(owner), r)
	if err != nil {
		s.logger.Error(ctx, "failed to store file", "owner", owner, "filename", filename, "error", err)
		return fmt.Errorf("%w: failed to store file", common.ErrorStorage)
	}

	meta := &models.FileMetadata{
		Filename:      filename,
		Size:          written,
		OwnerUsername: owner,
		StoragePath:   path,
		MimeType:      mimeType,
	}
	if _, err := repo.Create(ctx, meta); err != nil {
		// The blob stays behind as an orphan, which is tolerable.
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Warn(ctx, "concurrent upload lost the race", "owner", owner, "filename", filename, "orphan", path)
			return common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "failed to save metadata", "owner", owner, "filename", filename, "orphan", path, "error", err)
		return fmt.Errorf("%w: failed to save file metadata", common.ErrorStorage)
	}

	s.logger.Info(ctx, "file stored", "owner", owner, "filename", filename, "path", path, "size", written)
	return nil
}

// Delete removes the physical bytes first and the metadata record only
// afterwards. If the physical deletion fails the record is deliberately
// kept, so a retry is possible without re-upload.
func (s *FileService) Delete(ctx context.Context, owner string, filename string) error {
	repo := s.repomanager.Files(s.db)

	meta, err := repo.FindByOwnerAndFilename(ctx, owner, filename)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error searching file: %w", err)
	}

	if err := s.blobs.Delete(meta.StoragePath); err != nil {
		s.logger.Error(ctx, "failed to delete physical file", "owner", owner, "filename", filename, "path", meta.StoragePath, "error", err)
		return fmt.Errorf("%w: failed to delete physical file", common.ErrorStorage)
	}

	if err := repo.Delete(ctx, meta.ID); err != nil {
		return fmt.Errorf("error deleting metadata: %w", err)
	}

	s.logger.Info(ctx, "file deleted", "owner", owner, "filename", filename)
	return nil
}

// Download returns the metadata record and a reader over the stored bytes.
// The caller owns the reader and must close it. A record whose blob is
// missing or unreadable is a consistency violation, reported as a storage
// failure rather than silently recovered.
func (s *FileService) Download(ctx context.Context, owner string, filename string) (*models.FileMetadata, io.ReadCloser, error) {
	repo := s.repomanager.Files(s.db)

	meta, err := repo.FindByOwnerAndFilename(ctx, owner, filename)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorNotFound
		}
		return nil, nil, fmt.Errorf("error searching file: %w", err)
	}

	rc, err := s.blobs.Open(meta.StoragePath)
	if err != nil {
		s.logger.Error(ctx, "file not readable on server", "owner", owner, "filename", filename, "path", meta.StoragePath, "error", err)
		return nil, nil, fmt.Errorf("%w: file not readable on server", common.ErrorStorage)
	}

	s.logger.Info(ctx, "downloading file", "owner", owner, "filename", filename)
	return meta, rc, nil
}

// List returns up to limit records scoped strictly to owner, reduced to
// (filename, size). Ordering is whatever the database's natural order
// provides.
func (s *FileService) List(ctx context.Context, owner string, limit int) ([]models.FileListItem, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be > 0", common.ErrorValidation)
	}

	repo := s.repomanager.Files(s.db)
	files, err := repo.ListByOwner(ctx, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}

	items := make([]models.FileListItem, 0, len(files))
	for _, f := range files {
		items = append(items, models.FileListItem{Filename: f.Filename, Size: f.Size})
	}
	return items, nil
}

// Rename mutates only the filename; the storage path keeps pointing at the
// same physical bytes. It runs in one transaction so the existence check
// and the update observe the same state.
func (s *FileService) Rename(ctx context.Context, owner string, filename string, newName string) error {
	if newName == "" {
		return fmt.Errorf("%w: new filename is missing", common.ErrorValidation)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		meta, err := repo.FindByOwnerAndFilename(ctx, owner, filename)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("error searching file: %w", err)
		}

		_, err = repo.FindByOwnerAndFilename(ctx, owner, newName)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error checking new name: %w", err)
		}

		if err := repo.UpdateFilename(ctx, meta.ID, newName); err != nil {
			return err
		}

		s.logger.Info(ctx, "file renamed", "owner", owner, "from", filename, "to", newName)
		return nil
	})
}
