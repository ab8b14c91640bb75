// Package config handles marin configuration.
//
// Values are layered: built-in defaults, then a TOML file, then a .env file,
// then MARIN_* environment variables. Command-line flags are applied on top
// by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Henka-Programmer/Marin/internal/dialect"
	"github.com/Henka-Programmer/Marin/internal/sqlquery"
)

// DefaultFile is the config file looked up in the working directory when
// no path is given.
const DefaultFile = "marin.toml"

// Environment variable names.
const (
	EnvDialect        = "MARIN_DIALECT"
	EnvParamFormat    = "MARIN_PARAM_FORMAT"
	EnvCatalog        = "MARIN_CATALOG"
	EnvDatabase       = "MARIN_DATABASE"
	EnvMaxAliasLength = "MARIN_MAX_ALIAS_LENGTH"
)

// Config represents the marin configuration.
type Config struct {
	// Dialect is the SQL dialect name: sqlserver or sqlite.
	Dialect string `toml:"dialect"`

	// ParamFormat names parameters. It must contain {column}.
	ParamFormat string `toml:"param_format"`

	// Catalog is the path of a YAML or CUE catalog file.
	Catalog string `toml:"catalog"`

	// Database is a SQLite path or libsql URL used for introspection.
	Database string `toml:"database"`

	// MaxAliasLength caps generated join aliases. Zero disables the cap.
	MaxAliasLength int `toml:"max_alias_length"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dialect:        dialect.NameSQLServer,
		ParamFormat:    sqlquery.DefaultParamFormat,
		MaxAliasLength: sqlquery.DefaultMaxAliasLength,
	}
}

// Load builds the configuration. An empty path reads DefaultFile if it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDialect); v != "" {
		c.Dialect = v
	}
	if v := os.Getenv(EnvParamFormat); v != "" {
		c.ParamFormat = v
	}
	if v := os.Getenv(EnvCatalog); v != "" {
		c.Catalog = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvMaxAliasLength); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxAliasLength, err)
		}
		c.MaxAliasLength = n
	}
	return nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if _, err := dialect.Lookup(c.Dialect); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := sqlquery.NewAllocator(c.ParamFormat); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.MaxAliasLength < 0 {
		return fmt.Errorf("invalid config: max_alias_length must not be negative, got %d", c.MaxAliasLength)
	}
	return nil
}

// DialectImpl returns the configured dialect.
func (c *Config) DialectImpl() dialect.Dialect {
	d, err := dialect.Lookup(c.Dialect)
	if err != nil {
		return dialect.Default
	}
	return d
}
