// Package config loads service configuration from a YAML file, a .env file
// and environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"order-ledger/internal/domain"
	"order-ledger/internal/logger"
	"order-ledger/internal/reporting"
)

// Source kinds
const (
	SourceHTTP       = "http"
	SourceFile       = "file"
	SourcePostgres   = "postgres"
	SourceClickhouse = "clickhouse"
	SourceFixtures   = "fixtures"
)

// Config is the full service configuration.
type Config struct {
	Source struct {
		Kind          string        `yaml:"kind"`
		URL           string        `yaml:"url"`
		Path          string        `yaml:"path"`
		PostgresDSN   string        `yaml:"postgres_dsn"`
		ClickhouseDSN string        `yaml:"clickhouse_dsn"`
		Timeout       time.Duration `yaml:"timeout"`
		Migrate       bool          `yaml:"migrate"`
	} `yaml:"source"`
	Aggregation struct {
		ProfitField     string `yaml:"profit_field"`
		ClosedSalesOnly bool   `yaml:"closed_sales_only"`
	} `yaml:"aggregation"`
	Normalization struct {
		ErrorPolicy string `yaml:"error_policy"`
		Timezone    string `yaml:"timezone"`
	} `yaml:"normalization"`
	Display struct {
		SortOrder    string `yaml:"sort_order"`
		CompactWidth int    `yaml:"compact_width"`
		Compact      bool   `yaml:"compact"`
		Format       string `yaml:"format"`
	} `yaml:"display"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level   string `yaml:"level"`
		Format  string `yaml:"format"`
		Tracing bool   `yaml:"tracing"`
	} `yaml:"log"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	var c Config
	c.Source.Kind = SourceHTTP
	c.Source.URL = "http://localhost:8000/orders.json"
	c.Source.Timeout = 30 * time.Second
	c.Aggregation.ProfitField = string(domain.ProfitFieldGross)
	c.Normalization.ErrorPolicy = string(domain.ErrorPolicyAbort)
	c.Normalization.Timezone = "UTC"
	c.Display.SortOrder = string(domain.SortByIDAsc)
	c.Display.CompactWidth = reporting.DefaultCompactWidth
	c.Display.Format = string(reporting.FormatMarkdown)
	c.Server.Addr = ":8080"
	c.Log.Level = "INFO"
	c.Log.Format = "json"
	return &c
}

// Validate checks every enumerated value and required source setting.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceHTTP:
		if c.Source.URL == "" {
			return errors.New("source.url is required for source kind 'http'")
		}
	case SourceFile:
		if c.Source.Path == "" {
			return errors.New("source.path is required for source kind 'file'")
		}
	case SourcePostgres:
		if c.Source.PostgresDSN == "" {
			return errors.New("source.postgres_dsn is required for source kind 'postgres'")
		}
	case SourceClickhouse:
		if c.Source.ClickhouseDSN == "" {
			return errors.New("source.clickhouse_dsn is required for source kind 'clickhouse'")
		}
	case SourceFixtures:
	default:
		return fmt.Errorf("invalid source.kind '%s': must be 'http', 'file', 'postgres', 'clickhouse' or 'fixtures'", c.Source.Kind)
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative, got %s", c.Source.Timeout)
	}
	if _, err := domain.ParseProfitField(c.Aggregation.ProfitField); err != nil {
		return fmt.Errorf("aggregation.profit_field: %w", err)
	}
	if _, err := domain.ParseErrorPolicy(c.Normalization.ErrorPolicy); err != nil {
		return fmt.Errorf("normalization.error_policy: %w", err)
	}
	if _, err := time.LoadLocation(c.Normalization.Timezone); err != nil {
		return fmt.Errorf("normalization.timezone: %w", err)
	}
	if _, err := domain.ParseSortOrder(c.Display.SortOrder); err != nil {
		return fmt.Errorf("display.sort_order: %w", err)
	}
	if c.Display.CompactWidth <= 0 {
		return fmt.Errorf("display.compact_width must be positive, got %d", c.Display.CompactWidth)
	}
	if _, err := reporting.ParseFormat(c.Display.Format); err != nil {
		return fmt.Errorf("display.format: %w", err)
	}
	return nil
}

// Load builds the configuration. path may be empty to skip the YAML file.
// envFiles are loaded with godotenv; a missing .env file is not an error.
// Variables already present in the environment win over .env values.
func Load(path string, envFiles ...string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// applyEnv overrides settings from environment variables.
func (c *Config) applyEnv() error {
	setString(&c.Source.Kind, "SOURCE_KIND")
	setString(&c.Source.URL, "ORDERS_URL")
	setString(&c.Source.Path, "ORDERS_FILE")
	setString(&c.Source.PostgresDSN, "POSTGRES_DSN")
	setString(&c.Source.ClickhouseDSN, "CLICKHOUSE_DSN")
	setString(&c.Aggregation.ProfitField, "PROFIT_FIELD")
	setString(&c.Normalization.ErrorPolicy, "ERROR_POLICY")
	setString(&c.Normalization.Timezone, "TIMEZONE")
	setString(&c.Display.SortOrder, "SORT_ORDER")
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if v := os.Getenv("SOURCE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SOURCE_TIMEOUT: %w", err)
		}
		c.Source.Timeout = d
	}
	if err := setBool(&c.Aggregation.ClosedSalesOnly, "CLOSED_SALES_ONLY"); err != nil {
		return err
	}
	if err := setBool(&c.Log.Tracing, "TRACING_ENABLED"); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

// ProfitField returns the validated profit field.
func (c *Config) ProfitField() domain.ProfitField {
	f, _ := domain.ParseProfitField(c.Aggregation.ProfitField)
	return f
}

// ErrorPolicy returns the validated error policy.
func (c *Config) ErrorPolicy() domain.ErrorPolicy {
	p, _ := domain.ParseErrorPolicy(c.Normalization.ErrorPolicy)
	return p
}

// SortOrder returns the validated default sort order.
func (c *Config) SortOrder() domain.SortOrder {
	o, _ := domain.ParseSortOrder(c.Display.SortOrder)
	return o
}

// Format returns the validated default output format.
func (c *Config) Format() reporting.Format {
	f, _ := reporting.ParseFormat(c.Display.Format)
	return f
}

// Location returns the location for dates without a zone offset.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Normalization.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Logger returns the logging configuration.
func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:   c.Log.Level,
		Format:  c.Log.Format,
		Tracing: c.Log.Tracing,
	}
}
