// Package auth provides the pluggable security primitives used by the
// session layer: one-way password hashing and opaque token generation.
package auth

import (
	"github.com/dmitrijs2005/cloudstore/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher is an opaque one-way hashing capability.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Matches(raw string, digest string) bool
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost. A cost below
// bcrypt.MinCost falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash derives a bcrypt digest from raw. The working byte copy of the
// password is zeroed once bcrypt has consumed it.
func (h *BcryptHasher) Hash(raw string) (string, error) {
	buf := []byte(raw)
	defer common.WipeByteArray(buf)

	b, err := bcrypt.GenerateFromPassword(buf, h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Matches reports whether raw is the password behind digest. The working
// byte copy is zeroed after comparison.
func (h *BcryptHasher) Matches(raw string, digest string) bool {
	buf := []byte(raw)
	defer common.WipeByteArray(buf)

	return bcrypt.CompareHashAndPassword([]byte(digest), buf) == nil
}
