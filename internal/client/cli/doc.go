// Package cli provides the flowportal command-line client.
//
// It wires configuration, local session storage, the backend gateway, and the
// session store, and exposes them as a cobra command tree. Without a
// subcommand an interactive REPL is started. Every command first restores the
// saved session.
//
// Key features:
//   - Login / Signup / Logout
//   - Forgot password and resend verification emails
//   - Protected views: dashboard and whoami
//   - Company domain lookup
//
// Missing input is prompted for with huh forms on a terminal and with plain
// line input otherwise. See Execute, App and runREPL for details.
package cli
