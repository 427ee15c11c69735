package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func base() *Config {
	return &Config{
		Inverters: []InverterConfig{{Name: "flag", Host: "10.0.0.1", Port: DefaultPort}},
		Settings: Settings{
			PollInterval:   time.Minute,
			Cooldown:       100 * time.Millisecond,
			ReconnectDelay: 30 * time.Second,
			LogLevel:       "INFO",
			HTTPCfg:        HTTPConfig{Addr: "0.0.0.0:8000"},
		},
	}
}

func TestLoad_FileOverridesFlags(t *testing.T) {
	path := writeFile(t, `
poll_interval: 30s
mqtt:
  host: broker.local:1883
  username: solar
inverters:
  - name: roof
    host: 192.168.1.20
    battery: true
  - name: garage
    host: 192.168.1.21
    port: 6607
    slave_id: 1
    optimizers: true
`)
	cfg := base()

	require.NoError(t, Load(path, cfg))

	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.Cooldown, "values missing from the file keep the flag value")
	assert.Equal(t, "broker.local:1883", cfg.MqttCfg.Host)
	assert.Equal(t, "solar", cfg.MqttCfg.Username)
	require.Len(t, cfg.Inverters, 2)
	assert.Equal(t, InverterConfig{Name: "roof", Host: "192.168.1.20", Port: DefaultPort, Battery: true}, cfg.Inverters[0])
	assert.Equal(t, InverterConfig{Name: "garage", Host: "192.168.1.21", Port: 6607, SlaveID: 1, Optimizers: true}, cfg.Inverters[1])
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, `
mqtt:
  host: broker.local:1883
  password: from-file
influx:
  url: http://influx:8086
`)
	t.Setenv("MQTT_PASS", "from-env")
	t.Setenv("INFLUX_TOKEN", "secret-token")
	t.Setenv("DATABASE_URL", "postgres://localhost/huawei")
	t.Setenv("API_SECRET", "jwt-secret")
	cfg := base()

	require.NoError(t, Load(path, cfg))

	assert.Equal(t, "broker.local:1883", cfg.MqttCfg.Host)
	assert.Equal(t, "from-env", cfg.MqttCfg.Password)
	assert.Equal(t, "http://influx:8086", cfg.InfluxCfg.URL)
	assert.Equal(t, "secret-token", cfg.InfluxCfg.Token)
	assert.Equal(t, "postgres://localhost/huawei", cfg.DatabaseCfg.URL)
	assert.Equal(t, "jwt-secret", cfg.HTTPCfg.APISecret)
}

func TestLoad_NoFile(t *testing.T) {
	cfg := base()
	cfg.Inverters[0].Name = ""
	cfg.Inverters[0].Port = 0

	require.NoError(t, Load("", cfg))

	assert.Equal(t, "10.0.0.1", cfg.Inverters[0].Name)
	assert.Equal(t, DefaultPort, cfg.Inverters[0].Port)
}

func TestLoad_Errors(t *testing.T) {
	assert.Error(t, Load(filepath.Join(t.TempDir(), "missing.yaml"), base()))
	assert.Error(t, Load(writeFile(t, "inverters: {"), base()))
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"valid": {
			mutate: func(*Config) {},
		},
		"no inverters": {
			mutate:  func(c *Config) { c.Inverters = nil },
			wantErr: "at least one inverter",
		},
		"missing host": {
			mutate:  func(c *Config) { c.Inverters[0].Host = "" },
			wantErr: "host is required",
		},
		"bad port": {
			mutate:  func(c *Config) { c.Inverters[0].Port = 70000 },
			wantErr: "invalid port",
		},
		"duplicate name": {
			mutate: func(c *Config) {
				c.Inverters = append(c.Inverters, InverterConfig{Name: "flag", Host: "10.0.0.2", Port: DefaultPort})
			},
			wantErr: "duplicate name",
		},
		"zero poll interval": {
			mutate:  func(c *Config) { c.PollInterval = 0 },
			wantErr: "poll interval",
		},
		"zero delays use poller defaults": {
			mutate: func(c *Config) {
				c.Cooldown = 0
				c.ReconnectDelay = 0
			},
		},
		"negative cooldown": {
			mutate:  func(c *Config) { c.Cooldown = -time.Second },
			wantErr: "cannot be negative",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
