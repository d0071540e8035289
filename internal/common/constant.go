// Package common contains constants shared by the flowportal client packages.
package common

// AuthTokenKey is the durable-storage key holding the current bearer token.
// Absence of the key means there is no session to restore.
const AuthTokenKey = "authToken"

// Outbound HTTP header names used by the gateway.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)
