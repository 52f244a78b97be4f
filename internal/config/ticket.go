package config

import (
	"github.com/spf13/viper"

	"github.com/anchore/riskboard/riskboard/ticket"
)

type ticketing struct {
	ticket.Config `yaml:",inline" mapstructure:",squash"`
}

func (cfg ticketing) loadDefaultValues(v *viper.Viper) {
	def := ticket.DefaultConfig()
	v.SetDefault("ticket.base-url", def.BaseURL)
	v.SetDefault("ticket.project", def.Project)
}
