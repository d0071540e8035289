// Package client contains the backend gateway of flowportal and the
// bootstrap of the local database.
//
// # Overview
//
// The package provides:
//  1. The Client interface: login, signup, forgot-password,
//     resend-verification, current-user lookup, logout and the company
//     domain check, each returning a models.Envelope.
//  2. HTTPClient, the JSON-over-HTTP implementation. It is stateless and
//     safe for concurrent use.
//  3. InitDatabase and RunMigrations, which open the SQLite file backing
//     durable storage and apply the embedded goose migrations.
//
// # Error Handling
//
// No gateway operation returns an error. Transport failures (DNS, refused
// connections, cancelled contexts, unreadable bodies) and bodies that are not
// a JSON envelope are logged and folded into
//
//	Envelope{Success: false, Message: NetworkErrorMessage}
//
// A non-2xx response carrying a well-formed envelope is returned unchanged,
// including its field-level errors: the backend decides success.
//
// # Timeouts & Retries
//
// None. Each call is a single request; the caller's context is the only
// deadline.
package client
