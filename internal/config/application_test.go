package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchore/go-logger"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/presenter"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(contents), 0600))
	return p
}

func TestLoadApplicationConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		cliOpts CliOnlyOptions
		wantErr require.ErrorAssertionFunc
		assert  func(t *testing.T, app *Application)
	}{
		{
			name:   "defaults",
			config: "{}\n",
			assert: func(t *testing.T, app *Application) {
				assert.Equal(t, presenter.TableFormat, app.OutputFormat)
				assert.Equal(t, SQLiteBackend, app.DB.Backend)
				assert.NotEmpty(t, app.DB.Path)
				assert.Equal(t, "127.0.0.1:8080", app.Server.Address)
				assert.Equal(t, "SEC", app.Ticket.Project)
				assert.Equal(t, "https://tickets.example.com", app.Ticket.BaseURL)
				assert.Equal(t, logger.WarnLevel, app.Log.Level)
				assert.Empty(t, app.Risk.CriticalityMultipliers)
			},
		},
		{
			name: "all sections",
			config: `
output: json
db:
  backend: Memory
  path: ""
server:
  address: 0.0.0.0:9000
ticket:
  project: ops
  base-url: https://jira.internal
risk:
  criticality-multipliers:
    high: 2
log:
  level: debug
`,
			assert: func(t *testing.T, app *Application) {
				assert.Equal(t, presenter.JSONFormat, app.OutputFormat)
				assert.Equal(t, MemoryBackend, app.DB.Backend)
				assert.Equal(t, "0.0.0.0:9000", app.Server.Address)
				assert.Equal(t, "ops", app.Ticket.Project)
				assert.Equal(t, "https://jira.internal", app.Ticket.BaseURL)
				assert.Equal(t, map[string]float64{"high": 2}, app.Risk.CriticalityMultipliers)
				assert.Equal(t, 2.0, app.Risk.Weights().CriticalityMultiplier[model.CriticalityHigh])
				assert.Equal(t, 1.5, app.Risk.Weights().CriticalityMultiplier[model.CriticalityCritical])
				assert.Equal(t, logger.DebugLevel, app.Log.Level)
				assert.Equal(t, uint(1), app.Verbosity)
			},
		},
		{
			name:    "verbosity flag wins over configured level",
			config:  "log:\n  level: error\n",
			cliOpts: CliOnlyOptions{Verbosity: 2},
			assert: func(t *testing.T, app *Application) {
				assert.Equal(t, logger.DebugLevel, app.Log.Level)
			},
		},
		{
			name:    "quiet disables logging",
			config:  "quiet: true\n",
			cliOpts: CliOnlyOptions{Verbosity: 3},
			assert: func(t *testing.T, app *Application) {
				assert.Equal(t, logger.DisabledLevel, app.Log.Level)
			},
		},
		{
			name:    "bad backend",
			config:  "db:\n  backend: postgres\n",
			wantErr: require.Error,
		},
		{
			name:    "bad output",
			config:  "output: xml\n",
			wantErr: require.Error,
		},
		{
			name:    "bad criticality multiplier",
			config:  "risk:\n  criticality-multipliers:\n    extreme: 3\n",
			wantErr: require.Error,
		},
		{
			name:    "negative criticality multiplier",
			config:  "risk:\n  criticality-multipliers:\n    low: -1\n",
			wantErr: require.Error,
		},
		{
			name:    "empty server address",
			config:  "server:\n  address: \" \"\n",
			wantErr: require.Error,
		},
		{
			name:    "bad log level",
			config:  "log:\n  level: loud\n",
			wantErr: require.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr == nil {
				tt.wantErr = require.NoError
			}
			opts := tt.cliOpts
			opts.ConfigPath = writeConfig(t, tt.config)

			app, err := LoadApplicationConfig(viper.New(), opts)
			tt.wantErr(t, err)
			if err != nil {
				return
			}
			assert.Equal(t, opts.ConfigPath, app.ConfigPath)
			if tt.assert != nil {
				tt.assert(t, app)
			}
		})
	}
}

func TestLoadApplicationConfig_EnvOverride(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("RISKBOARD_DB_PATH", dbPath)
	t.Setenv("RISKBOARD_SERVER_ADDRESS", "localhost:1234")

	app, err := LoadApplicationConfig(viper.New(), CliOnlyOptions{ConfigPath: writeConfig(t, "{}\n")})
	require.NoError(t, err)

	assert.Equal(t, dbPath, app.DB.Path)
	assert.Equal(t, "localhost:1234", app.Server.Address)
}

func TestLoadApplicationConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadApplicationConfig(viper.New(), CliOnlyOptions{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
}

func TestApplication_String(t *testing.T) {
	app, err := LoadApplicationConfig(viper.New(), CliOnlyOptions{ConfigPath: writeConfig(t, "output: csv\n")})
	require.NoError(t, err)

	s := app.String()
	assert.Contains(t, s, "output: csv")
	assert.Contains(t, s, "backend: sqlite")
	assert.Contains(t, s, "project: SEC")
	assert.NotContains(t, s, "outputformat")
}
