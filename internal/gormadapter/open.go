package gormadapter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/anchore/riskboard/internal/log"
)

var commonStatements = []string{
	`PRAGMA foreign_keys = ON`,
}

var writerStatements = []string{
	// wait for a competing writer instead of failing immediately with SQLITE_BUSY
	`PRAGMA busy_timeout = 5000`,
}

var fileWriterStatements = []string{
	// the activity log is an audit trail, so durability wins over raw write speed here
	`PRAGMA journal_mode = WAL`,
	`PRAGMA synchronous = NORMAL`,
}

var readConnectionOptions = []string{
	"mode=ro",
}

type config struct {
	debug      bool
	path       string
	writable   bool
	truncate   bool
	models     []any
	memory     bool
	statements []string
}

type Option func(*config)

func WithDebug(debug bool) Option {
	return func(c *config) {
		c.debug = debug
	}
}

// WithTruncate removes any existing DB file at the path before opening. Implies a writable DB.
func WithTruncate(truncate bool) Option {
	return func(c *config) {
		c.truncate = truncate
		if truncate {
			c.writable = true
		}
	}
}

func WithStatements(statements ...string) Option {
	return func(c *config) {
		c.statements = append(c.statements, statements...)
	}
}

func WithModels(models []any) Option {
	return func(c *config) {
		c.models = append(c.models, models...)
	}
}

func WithWritable(write bool, models []any) Option {
	return func(c *config) {
		c.writable = write
		c.models = append(c.models, models...)
	}
}

func newConfig(path string, opts []Option) config {
	c := config{}
	c.apply(path, opts)
	return c
}

func (c *config) apply(path string, opts []Option) {
	for _, o := range opts {
		o(c)
	}
	c.memory = len(path) == 0
	c.path = path
}

func (c config) connectionString() string {
	if c.memory {
		return ":memory:"
	}

	conn := fmt.Sprintf("file:%s?cache=shared", c.path)
	if !c.writable {
		for _, o := range readConnectionOptions {
			conn += fmt.Sprintf("&%s", o)
		}
	}
	return conn
}

// Open a new connection to a sqlite3 database file (or an in-memory database when the path is empty).
func Open(path string, options ...Option) (*gorm.DB, error) {
	cfg := newConfig(path, options)

	if cfg.truncate && cfg.memory {
		return nil, fmt.Errorf("cannot truncate an in-memory DB")
	}

	if cfg.writable && !cfg.memory {
		if err := prepareParent(path, cfg.truncate); err != nil {
			return nil, err
		}
	}

	dbObj, err := gorm.Open(sqlite.Open(cfg.connectionString()), &gorm.Config{Logger: &logAdapter{
		debug:         cfg.debug,
		slowThreshold: 400 * time.Millisecond,
	}})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to DB: %w", err)
	}

	sqlDB, err := dbObj.DB()
	if err != nil {
		return nil, fmt.Errorf("unable to get DB connection pool: %w", err)
	}
	// sqlite allows a single writer; one pooled connection also keeps per-connection PRAGMAs (and an in-memory DB) alive
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return cfg.prepareDB(dbObj)
}

func (c config) prepareDB(dbObj *gorm.DB) (*gorm.DB, error) {
	if c.writable {
		log.Debug("using writable DB statements")
		if err := c.applyStatements(dbObj, writerStatements); err != nil {
			return nil, fmt.Errorf("unable to apply DB writer statements: %w", err)
		}
		if !c.memory {
			if err := c.applyStatements(dbObj, fileWriterStatements); err != nil {
				return nil, fmt.Errorf("unable to apply DB file writer statements: %w", err)
			}
		}
	}

	if err := c.applyStatements(dbObj, commonStatements); err != nil {
		return nil, fmt.Errorf("unable to apply DB common statements: %w", err)
	}

	if len(c.statements) > 0 {
		if err := c.applyStatements(dbObj, c.statements); err != nil {
			return nil, fmt.Errorf("unable to apply DB custom statements: %w", err)
		}
	}

	if len(c.models) > 0 && c.writable {
		log.Debug("applying DB migrations")
		if err := dbObj.AutoMigrate(c.models...); err != nil {
			return nil, fmt.Errorf("unable to migrate: %w", err)
		}
	}

	if c.debug {
		dbObj = dbObj.Debug()
	}

	return dbObj, nil
}

func (c config) applyStatements(db *gorm.DB, statements []string) error {
	for _, sqlStmt := range statements {
		if err := db.Exec(sqlStmt).Error; err != nil {
			return fmt.Errorf("unable to execute (%s): %w", sqlStmt, err)
		}
		if strings.HasPrefix(sqlStmt, "PRAGMA") {
			name, value, err := c.pragmaNameValue(sqlStmt)
			if err != nil {
				return fmt.Errorf("unable to parse PRAGMA statement: %w", err)
			}

			var result string
			if err := db.Raw("PRAGMA " + name + ";").Scan(&result).Error; err != nil {
				return fmt.Errorf("unable to verify PRAGMA %q: %w", name, err)
			}

			if !pragmaValueMatches(value, result) {
				return fmt.Errorf("PRAGMA %q was not set to %q (%q)", name, value, result)
			}
		}
	}
	return nil
}

func pragmaValueMatches(want, got string) bool {
	if strings.EqualFold(want, got) {
		return true
	}
	switch strings.ToUpper(want) {
	case "ON":
		return got == "1"
	case "OFF":
		return got == "0"
	case "NORMAL":
		return got == "1"
	case "FULL":
		return got == "2"
	}
	return false
}

func (c config) pragmaNameValue(sqlStmt string) (string, string, error) {
	sqlStmt = strings.TrimSuffix(strings.TrimSpace(sqlStmt), ";")
	if strings.Count(sqlStmt, ";") > 0 {
		return "", "", fmt.Errorf("PRAGMA statements should not contain semicolons: %q", sqlStmt)
	}

	// sqlite will not return errors when there are issues with the pragma key or value, but it will
	// be inconsistent with the expected value if you explicitly check
	var name, value string

	clean := strings.TrimPrefix(sqlStmt, "PRAGMA")
	fields := strings.SplitN(clean, "=", 2)
	if len(fields) == 2 {
		name = strings.ToLower(strings.TrimSpace(fields[0]))
		value = strings.TrimSpace(fields[1])
	} else {
		return "", "", fmt.Errorf("unable to parse PRAGMA statement: %q", sqlStmt)
	}

	if name == "" {
		return "", "", fmt.Errorf("unable to parse name from PRAGMA statement: %q", sqlStmt)
	}

	return name, value, nil
}

func prepareParent(path string, truncate bool) error {
	if truncate {
		// the WAL sidecars belong to the old file and must not outlive it
		for _, p := range []string{path, path + "-wal", path + "-shm"} {
			if _, err := os.Stat(p); err == nil {
				if err := os.Remove(p); err != nil {
					return fmt.Errorf("unable to remove existing DB file: %w", err)
				}
			}
		}
	}

	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0700); err != nil {
		return fmt.Errorf("unable to create parent directory %q for DB file: %w", parent, err)
	}

	return nil
}
