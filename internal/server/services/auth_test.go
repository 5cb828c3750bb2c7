package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeRepoManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	rm := &fakeRepoManager{u: &memUsersRepo{}, f: &memFilesRepo{}}
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	s := NewAuthService(db, rm, hasher, auth.NewUUIDTokenSource(), testLogger(t))
	return s, rm, mock
}

func hashFor(t *testing.T, raw string) string {
	t.Helper()
	h := auth.NewBcryptHasher(bcrypt.MinCost)
	digest, err := h.Hash(raw)
	require.NoError(t, err)
	return digest
}

func TestRegister_Success(t *testing.T) {
	s, rm, mock := newAuthFixture(t)
	expectTx(mock)

	err := s.Register(context.Background(), "alice", "pw1", "alice@x.com")
	require.NoError(t, err)

	u, err := rm.u.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", u.Email)
	assert.Nil(t, u.CurrentAuthToken, "new user must have no active token")
	assert.NotEqual(t, "pw1", u.PasswordHash)
}

func TestRegister_UsernameTaken(t *testing.T) {
	s, rm, mock := newAuthFixture(t)
	registerUser(t, rm.u, "alice", "alice@x.com", "h")
	expectTxRollback(mock)

	err := s.Register(context.Background(), "alice", "pw", "other@x.com")
	assert.ErrorIs(t, err, common.ErrorUsernameTaken)
}

func TestRegister_EmailTaken(t *testing.T) {
	s, rm, mock := newAuthFixture(t)
	registerUser(t, rm.u, "alice", "alice@x.com", "h")
	expectTxRollback(mock)

	err := s.Register(context.Background(), "bob", "pw", "alice@x.com")
	assert.ErrorIs(t, err, common.ErrorEmailTaken)
}

func TestLogin_ByEmailAndByUsername(t *testing.T) {
	s, rm, mock := newAuthFixture(t)
	registerUser(t, rm.u, "alice", "alice@x.com", hashFor(t, "pw1"))

	expectTx(mock)
	tokenByEmail, err := s.Login(context.Background(), "alice@x.com", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, tokenByEmail)

	expectTx(mock)
	tokenByUsername, err := s.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, tokenByUsername)

	assert.NotEqual(t, tokenByEmail, tokenByUsername)
}

func TestLogin_WrongPassword(t *testing.T) {
	s, rm, mock := newAuthFixture(t)
	u := registerUser(t, rm.u, "alice", "alice@x.com", hashFor(t, "pw1"))
	prev := "tok-existing"
	u.CurrentAuthToken = &prev

	expectTxRollback(mock)
	_, err := s.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)

	// existing session must be left untouched
	require.NotNil(t, u.CurrentAuthToken)
	assert.Equal(t, "tok-existing", *u.CurrentAuthToken)
}

func TestLogin_UnknownUser(t *testing.T) {
	s, _, mock := newAuthFixture(t)

	expectTxRollback(mock)
	_, err := s.Login(context.Background(), "ghost", "pw")
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
}

func TestLogin_SecondLoginInvalidatesFirstToken(t *testing.T) {
	s, _, mock := newAuthFixture(t)
	expectTx(mock)
	require.NoError(t, s.Register(context.Background(), "alice", "pw1", "alice@x.com"))

	expectTx(mock)
	first, err := s.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	expectTx(mock)
	second, err := s.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = s.ValidateToken(context.Background(), first)
	assert.ErrorIs(t, err, common.ErrorInvalidToken, "previous session must be revoked")

	identity, err := s.ValidateToken(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", identity)
}

func TestValidateToken_MissingAndInvalid(t *testing.T) {
	s, _, _ := newAuthFixture(t)

	_, err := s.ValidateToken(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorMissingToken)

	_, err = s.ValidateToken(context.Background(), "   ")
	assert.ErrorIs(t, err, common.ErrorMissingToken)

	_, err = s.ValidateToken(context.Background(), "nobody-has-this")
	assert.ErrorIs(t, err, common.ErrorInvalidToken)
}

func TestValidateToken_BearerPrefix(t *testing.T) {
	s, rm, mock := newAuthFixture(t)
	registerUser(t, rm.u, "alice", "alice@x.com", hashFor(t, "pw1"))

	expectTx(mock)
	token, err := s.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	identity, err := s.ValidateToken(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", identity)
}

func TestValidateToken_FallsBackToUsername(t *testing.T) {
	s, rm, _ := newAuthFixture(t)
	u := registerUser(t, rm.u, "legacy", "", "h")
	tok := "tok-legacy"
	u.CurrentAuthToken = &tok

	identity, err := s.ValidateToken(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "legacy", identity, "identity falls back to username when email is empty")
}

func TestLogout_ClearsTokenAndIsIdempotent(t *testing.T) {
	s, rm, mock := newAuthFixture(t)
	registerUser(t, rm.u, "alice", "alice@x.com", hashFor(t, "pw1"))

	expectTx(mock)
	token, err := s.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	expectTx(mock)
	require.NoError(t, s.Logout(context.Background(), token))

	_, err = s.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, common.ErrorInvalidToken)

	// logging out an already-cleared token is a no-op
	expectTx(mock)
	require.NoError(t, s.Logout(context.Background(), token))

	expectTx(mock)
	require.NoError(t, s.Logout(context.Background(), "never-issued"))
}

func TestLogin_RepositoryFailure(t *testing.T) {
	s, rm, mock := newAuthFixture(t)
	rm.u.findErr = errors.New("db down")

	expectTxRollback(mock)
	_, err := s.Login(context.Background(), "alice", "pw1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorInvalidCredentials, "infrastructure failures must not masquerade as bad credentials")
}
