package auth

import "github.com/google/uuid"

// TokenSource issues opaque bearer tokens. Tokens carry no decodable
// payload; their only property is unguessability.
type TokenSource interface {
	NewToken() string
}

// UUIDTokenSource issues random UUIDv4 tokens (122 bits of entropy from
// crypto/rand, collision probability negligible).
type UUIDTokenSource struct{}

func NewUUIDTokenSource() *UUIDTokenSource {
	return &UUIDTokenSource{}
}

func (s *UUIDTokenSource) NewToken() string {
	return uuid.NewString()
}
