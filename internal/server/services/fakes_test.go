package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/dbx"
	"github.com/dmitrijs2005/cloudstore/internal/logging"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
	filemetarepo "github.com/dmitrijs2005/cloudstore/internal/server/repositories/filemeta"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/cloudstore/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testLogger(t *testing.T) logging.Logger {
	t.Helper()
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

// expectTx registers one Begin/Commit pair on the mock.
func expectTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

// expectTxRollback registers one Begin/Rollback pair on the mock.
func expectTxRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

// --- stateful in-memory users repository ---

type memUsersRepo struct {
	users     []*models.User
	seq       int
	findErr   error
	updateErr error
}

func (m *memUsersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	m.seq++
	user.ID = "u-" + strconv.Itoa(m.seq)
	m.users = append(m.users, user)
	return user, nil
}

func (m *memUsersRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) FindByToken(_ context.Context, token string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.CurrentAuthToken != nil && *u.CurrentAuthToken == token {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	if err == common.ErrorNotFound {
		return false, nil
	}
	return false, err
}

func (m *memUsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if err == common.ErrorNotFound {
		return false, nil
	}
	return false, err
}

func (m *memUsersRepo) UpdateToken(_ context.Context, userID string, token *string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for _, u := range m.users {
		if u.ID == userID {
			u.CurrentAuthToken = token
			return nil
		}
	}
	return fmt.Errorf("wrong rows affected count: 0")
}

// --- stateful in-memory file metadata repository ---

type memFilesRepo struct {
	files     []*models.FileMetadata
	seq       int
	createErr error
	findErr   error
	listErr   error
}

func (m *memFilesRepo) Create(_ context.Context, file *models.FileMetadata) (*models.FileMetadata, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, f := range m.files {
		if f.OwnerUsername == file.OwnerUsername && f.Filename == file.Filename {
			return nil, common.ErrorAlreadyExists
		}
		if f.StoragePath == file.StoragePath {
			return nil, common.ErrorAlreadyExists
		}
	}
	m.seq++
	file.ID = "f-" + strconv.Itoa(m.seq)
	m.files = append(m.files, file)
	return file, nil
}

func (m *memFilesRepo) FindByOwnerAndFilename(_ context.Context, owner string, filename string) (*models.FileMetadata, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, f := range m.files {
		if f.OwnerUsername == owner && f.Filename == filename {
			return f, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memFilesRepo) ListByOwner(_ context.Context, owner string, limit int) ([]*models.FileMetadata, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*models.FileMetadata
	for _, f := range m.files {
		if f.OwnerUsername != owner {
			continue
		}
		result = append(result, f)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *memFilesRepo) UpdateFilename(_ context.Context, id string, newName string) error {
	for _, f := range m.files {
		if f.ID != id {
			continue
		}
		for _, other := range m.files {
			if other.ID != id && other.OwnerUsername == f.OwnerUsername && other.Filename == newName {
				return common.ErrorAlreadyExists
			}
		}
		f.Filename = newName
		return nil
	}
	return fmt.Errorf("wrong rows affected count: 0")
}

func (m *memFilesRepo) Delete(_ context.Context, id string) error {
	for i, f := range m.files {
		if f.ID == id {
			m.files = append(m.files[:i], m.files[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("wrong rows affected count: 0")
}

// --- fake repository manager ---

type fakeRepoManager struct {
	u *memUsersRepo
	f *memFilesRepo
}

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository        { return m.u }
func (m *fakeRepoManager) Files(db dbx.DBTX) filemetarepo.Repository     { return m.f }

// --- fake blob store with injectable failures ---

type fakeBlobStore struct {
	blobs     map[string][]byte
	saveErr   error
	openErr   error
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}}
}

func (s *fakeBlobStore) Save(name string, r io.Reader) (string, int64, error) {
	if s.saveErr != nil {
		return "", 0, s.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	path := "/blobs/" + name
	s.blobs[path] = b
	return path, int64(len(b)), nil
}

func (s *fakeBlobStore) Open(path string) (io.ReadCloser, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	b, ok := s.blobs[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such blob", path)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *fakeBlobStore) Delete(path string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.blobs[path]; !ok {
		return fmt.Errorf("remove %s: no such blob", path)
	}
	delete(s.blobs, path)
	return nil
}

// registerUser seeds a user directly through the fake repo.
func registerUser(t *testing.T, repo *memUsersRepo, username, email, passwordHash string) *models.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &models.User{Username: username, Email: email, PasswordHash: passwordHash})
	require.NoError(t, err)
	return u
}
