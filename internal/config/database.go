package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/anchore/riskboard/internal"
)

const (
	SQLiteBackend = "sqlite"
	MemoryBackend = "memory"
)

// database selects and configures the backing store for findings, assets and the activity log.
type database struct {
	Backend string `yaml:"backend" json:"backend" mapstructure:"backend"` // one of "sqlite" or "memory"
	Path    string `yaml:"path" json:"path" mapstructure:"path"`          // location of the sqlite DB file (empty means in-memory sqlite)
	Debug   bool   `yaml:"debug" json:"debug" mapstructure:"debug"`       // log every SQL statement
	Reset   bool   `yaml:"-" json:"-" mapstructure:"-"`                   // discard the existing DB before opening (import --reset)
}

func (cfg database) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("db.backend", SQLiteBackend)
	v.SetDefault("db.path", path.Join(xdg.DataHome, internal.ApplicationName, internal.ApplicationName+".db"))
	v.SetDefault("db.debug", false)
}

func (cfg *database) parseConfigValues() error {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case "":
		cfg.Backend = SQLiteBackend
	case SQLiteBackend, MemoryBackend:
	default:
		return fmt.Errorf("bad db.backend value %q (available: %s, %s)", cfg.Backend, SQLiteBackend, MemoryBackend)
	}

	if cfg.Path != "" {
		expanded, err := homedir.Expand(strings.TrimSpace(cfg.Path))
		if err != nil {
			return fmt.Errorf("unable to expand db.path=%q: %w", cfg.Path, err)
		}
		cfg.Path = expanded
	}
	return nil
}
