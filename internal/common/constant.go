// Package common contains shared constants and sentinel errors used across
// cloudstore components.
package common

// AuthTokenHeaderName is the HTTP header carrying the bearer session token.
const AuthTokenHeaderName = "auth-token"

// BearerPrefix is the optional literal prefix clients may prepend to the
// token value. It is stripped before lookup.
const BearerPrefix = "Bearer "
