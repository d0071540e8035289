package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/saherflow/flowportal/internal/filex"
	"github.com/saherflow/flowportal/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "FLOWPORTAL"

	DefaultAPIBaseURL     = "http://localhost:5000/api"
	DefaultDataDir        = "~/.flowportal"
	DefaultRequestTimeout = 15 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"

	databaseFile = "session.db"
)

// viper keys
const (
	keyAPIURL    = "api_url"
	keyDataDir   = "data_dir"
	keyTimeout   = "timeout"
	keyPersist   = "persist_session"
	keyLogLevel  = "log_level"
	keyLogFormat = "log_format"
)

// command-line flag names
const (
	FlagConfig    = "config"
	FlagAPIURL    = "api-url"
	FlagDataDir   = "data-dir"
	FlagTimeout   = "timeout"
	FlagEphemeral = "ephemeral"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
)

// Config holds runtime settings for the flowportal CLI.
//
// Fields:
//   - APIBaseURL: base URL of the identity service, e.g. http://localhost:5000/api.
//   - DataDir: directory holding the local session database.
//   - RequestTimeout: deadline applied to each command's backend calls.
//   - PersistSession: when false the session lives in memory only.
//   - LogLevel, LogFormat: see logging.New.
type Config struct {
	APIBaseURL     string        `mapstructure:"api_url"`
	DataDir        string        `mapstructure:"data_dir"`
	RequestTimeout time.Duration `mapstructure:"timeout"`
	PersistSession bool          `mapstructure:"persist_session"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
}

// LoadDefaults populates c with the built-in defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = DefaultAPIBaseURL
	c.DataDir = DefaultDataDir
	c.RequestTimeout = DefaultRequestTimeout
	c.PersistSession = true
	c.LogLevel = DefaultLogLevel
	c.LogFormat = DefaultLogFormat
}

// DatabasePath is the location of the local SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, databaseFile)
}

// Validate checks the values that would otherwise fail late and obscurely.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("config: invalid api url %q: %w", c.APIBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: api url %q must be an absolute http(s) URL", c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config: data dir must be set")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

// RegisterFlags declares the configuration flags as persistent flags of cmd,
// so every subcommand accepts them.
func RegisterFlags(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.StringP(FlagConfig, "c", "", "path to a config file (yaml or json)")
	fs.String(FlagAPIURL, DefaultAPIBaseURL, "base URL of the identity service")
	fs.String(FlagDataDir, DefaultDataDir, "directory for the local session database")
	fs.Duration(FlagTimeout, DefaultRequestTimeout, "timeout for backend requests")
	fs.Bool(FlagEphemeral, false, "keep the session in memory only")
	fs.String(FlagLogLevel, DefaultLogLevel, "log level: debug, info, warn, error")
	fs.String(FlagLogFormat, DefaultLogFormat, "log format: text or json")
}

// Load builds a Config for cmd. Sources, later ones winning: built-in
// defaults, the config file, FLOWPORTAL_* environment variables, then flags
// set explicitly on the command line.
//
// Without --config, config.yaml or config.json in the default data directory
// is used if present. DataDir is returned with "~" expanded.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	fs := cmd.Flags()

	configFile, _ := fs.GetString(FlagConfig)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		dir, err := filex.ExpandHome(DefaultDataDir)
		if err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	for key, name := range map[string]string{
		keyAPIURL:    FlagAPIURL,
		keyDataDir:   FlagDataDir,
		keyTimeout:   FlagTimeout,
		keyLogLevel:  FlagLogLevel,
		keyLogFormat: FlagLogFormat,
	} {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("config: bind %s: %w", name, err)
			}
		}
	}
	if fs.Changed(FlagEphemeral) {
		ephemeral, _ := fs.GetBool(FlagEphemeral)
		v.Set(keyPersist, !ephemeral)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	dir, err := filex.ExpandHome(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.DataDir = dir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	var d Config
	d.LoadDefaults()

	v.SetDefault(keyAPIURL, d.APIBaseURL)
	v.SetDefault(keyDataDir, d.DataDir)
	v.SetDefault(keyTimeout, d.RequestTimeout)
	v.SetDefault(keyPersist, d.PersistSession)
	v.SetDefault(keyLogLevel, d.LogLevel)
	v.SetDefault(keyLogFormat, d.LogFormat)
}
