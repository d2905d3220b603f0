package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted in STORE_DRIVER
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverNeo4j    = "neo4j"
)

// Config contains runtime settings for the ingestion service
type Config struct {
	LogLevel string
	Host     string // default 0.0.0.0
	Port     string // default PORT env or 8080

	Store struct {
		Driver string // postgres (default), sqlite or neo4j
	}
	Postgres struct {
		URL      string
		MaxConns int
	}
	SQLite struct {
		Path string
	}
	Neo4j struct {
		URI      string
		Username string
		Password string
	}

	Ingest struct {
		PageDelay              time.Duration
		MaxConsecutiveFailures int
		Timeout                time.Duration
		Schedule               string // cron spec with seconds; empty disables the scheduler
	}

	RunLog struct {
		CredentialsPath string
		SpreadsheetID   string
		Tab             string
	}
}

// Load populates config from environment variables.
// Malformed values fail immediately; missing store settings are collected
// into one error that is returned together with the otherwise usable config.
func Load() (Config, error) {
	cfg := Config{
		LogLevel: "info",
		Host:     "0.0.0.0",
		Port:     "8080",
	}
	cfg.Store.Driver = DriverPostgres
	cfg.SQLite.Path = "zighang.db"
	cfg.Ingest.PageDelay = 300 * time.Millisecond
	cfg.Ingest.MaxConsecutiveFailures = 3
	cfg.Ingest.Timeout = 15 * time.Minute
	cfg.RunLog.Tab = "runs"

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = strings.ToLower(v)
	}

	cfg.Postgres.URL = os.Getenv("DATABASE_URL")
	if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("invalid DATABASE_MAX_CONNS %q: must be a positive integer", v)
		}
		cfg.Postgres.MaxConns = n
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.SQLite.Path = v
	}

	cfg.Neo4j.URI = os.Getenv("NEO4J_URI")
	cfg.Neo4j.Username = os.Getenv("NEO4J_USERNAME")
	cfg.Neo4j.Password = os.Getenv("NEO4J_PASSWORD")

	if v := os.Getenv("INGEST_PAGE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return cfg, fmt.Errorf("invalid INGEST_PAGE_DELAY %q: must be a non-negative duration", v)
		}
		cfg.Ingest.PageDelay = d
	}

	if v := os.Getenv("INGEST_MAX_CONSECUTIVE_FAILURES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("invalid INGEST_MAX_CONSECUTIVE_FAILURES %q: must be a positive integer", v)
		}
		cfg.Ingest.MaxConsecutiveFailures = n
	}

	if v := os.Getenv("INGEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return cfg, fmt.Errorf("invalid INGEST_TIMEOUT %q: must be a non-negative duration", v)
		}
		cfg.Ingest.Timeout = d
	}

	cfg.Ingest.Schedule = os.Getenv("INGEST_SCHEDULE")

	cfg.RunLog.CredentialsPath = os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH")
	cfg.RunLog.SpreadsheetID = os.Getenv("RUN_LOG_SPREADSHEET_ID")
	if v := os.Getenv("RUN_LOG_TAB"); v != "" {
		cfg.RunLog.Tab = v
	}

	var missingVars []string

	switch cfg.Store.Driver {
	case DriverPostgres:
		if cfg.Postgres.URL == "" {
			missingVars = append(missingVars, "DATABASE_URL")
		}
	case DriverSQLite:
	case DriverNeo4j:
		if cfg.Neo4j.URI == "" {
			missingVars = append(missingVars, "NEO4J_URI")
		}
		if cfg.Neo4j.Username == "" {
			missingVars = append(missingVars, "NEO4J_USERNAME")
		}
		if cfg.Neo4j.Password == "" {
			missingVars = append(missingVars, "NEO4J_PASSWORD")
		}
	default:
		return cfg, fmt.Errorf("unsupported STORE_DRIVER %q (want postgres, sqlite or neo4j)", cfg.Store.Driver)
	}

	if len(missingVars) > 0 {
		return cfg, &MissingError{Vars: missingVars}
	}

	return cfg, nil
}

// RunLogEnabled reports whether runs should be appended to a spreadsheet
func (c Config) RunLogEnabled() bool {
	return c.RunLog.CredentialsPath != "" && c.RunLog.SpreadsheetID != ""
}

// Addr is the HTTP listen address
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// MissingError lists required environment variables that were not set
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Vars, ", "))
}
