// Package config loads runtime configuration for the flowportal CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (yaml or json) selected via -c or --config. Without
//     the flag, ~/.flowportal/config.{yaml,json} is read if it exists.
//  3. Environment variables with the FLOWPORTAL_ prefix.
//  4. Command-line flags, which override earlier values when set explicitly.
//
// Supported flags
//
//	--api-url string      base URL of the identity service
//	--data-dir string     directory for the local session database
//	--timeout duration    timeout for backend requests (e.g. 15s)
//	--ephemeral           keep the session in memory only
//	--log-level string    debug, info, warn or error
//	--log-format string   text or json
//
// # Config file keys
//
//	api_url: http://localhost:5000/api
//	data_dir: ~/.flowportal
//	timeout: 15s
//	persist_session: true
//	log_level: info
//	log_format: text
//
// Environment variables use the same keys upper-cased, e.g.
// FLOWPORTAL_API_URL or FLOWPORTAL_PERSIST_SESSION.
//
// Primary API
//
//   - type Config                          holds the resolved settings
//   - func RegisterFlags(*cobra.Command)   declares the persistent flags
//   - func Load(*cobra.Command)            resolves and validates a Config
package config
