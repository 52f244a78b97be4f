package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type server struct {
	Address string `yaml:"address" json:"address" mapstructure:"address"` // host:port the API listens on
}

func (cfg server) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("server.address", "127.0.0.1:8080")
}

func (cfg *server) parseConfigValues() error {
	cfg.Address = strings.TrimSpace(cfg.Address)
	if cfg.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	return nil
}
