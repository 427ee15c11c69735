package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const DefaultPort = 502

type Config struct {
	Inverters []InverterConfig `yaml:"inverters"`
	Settings  `yaml:",inline"`
}

type InverterConfig struct {
	Name       string `yaml:"name"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	SlaveID    uint8  `yaml:"slave_id"`
	Optimizers bool   `yaml:"optimizers"`
	Battery    bool   `yaml:"battery"`
}

// Settings holds everything that is shared by all inverters. Every field
// can be overridden from the environment.
type Settings struct {
	PollInterval   time.Duration  `yaml:"poll_interval" env:"POLL_INTERVAL"`
	// Cooldown and ReconnectDelay fall back to the poller defaults when 0.
	Cooldown       time.Duration  `yaml:"cooldown" env:"COOLDOWN"`
	ReconnectDelay time.Duration  `yaml:"reconnect_delay" env:"RECONNECT_DELAY"`
	LogLevel       string         `yaml:"log_level" env:"LOG_LEVEL"`
	MqttCfg        MqttConfig     `yaml:"mqtt" envPrefix:"MQTT_"`
	DatabaseCfg    DatabaseConfig `yaml:"database"`
	InfluxCfg      InfluxConfig   `yaml:"influx" envPrefix:"INFLUX_"`
	HTTPCfg        HTTPConfig     `yaml:"http"`
}

type MqttConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Username string `yaml:"username" env:"USER"`
	Password string `yaml:"password" env:"PASS"`
}

type DatabaseConfig struct {
	URL              string `yaml:"url" env:"DATABASE_URL"`
	MigrationsFolder string `yaml:"migrations_folder" env:"MIGRATIONS_FOLDER"`
}

type InfluxConfig struct {
	URL    string `yaml:"url" env:"URL"`
	Token  string `yaml:"token" env:"TOKEN"`
	Org    string `yaml:"org" env:"ORG"`
	Bucket string `yaml:"bucket" env:"BUCKET"`
}

type HTTPConfig struct {
	Addr            string `yaml:"addr" env:"HTTP_ADDR"`
	APISecret       string `yaml:"api_secret" env:"API_SECRET"`
	APIPasswordHash string `yaml:"api_password_hash" env:"API_PASSWORD_HASH"`
}

// Load reads the YAML file at path on top of cfg and then applies the
// environment, so the precedence is flags, then file, then environment.
// An empty path only applies the environment.
func Load(path string, cfg *Config) error {
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg.Settings); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	cfg.applyDefaults()
	return nil
}

func (c *Config) applyDefaults() {
	for i := range c.Inverters {
		if c.Inverters[i].Port == 0 {
			c.Inverters[i].Port = DefaultPort
		}
		if c.Inverters[i].Name == "" {
			c.Inverters[i].Name = c.Inverters[i].Host
		}
	}
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.Inverters) == 0 {
		errs = append(errs, errors.New("at least one inverter is required"))
	}
	names := make(map[string]struct{}, len(c.Inverters))
	for i, inv := range c.Inverters {
		if inv.Host == "" {
			errs = append(errs, fmt.Errorf("inverter %d: host is required", i))
		}
		if inv.Port <= 0 || inv.Port > 65535 {
			errs = append(errs, fmt.Errorf("inverter %d: invalid port %d", i, inv.Port))
		}
		if _, dup := names[inv.Name]; dup {
			errs = append(errs, fmt.Errorf("inverter %d: duplicate name %q", i, inv.Name))
		}
		names[inv.Name] = struct{}{}
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("poll interval must be positive"))
	}
	if c.Cooldown < 0 || c.ReconnectDelay < 0 {
		errs = append(errs, errors.New("cooldown and reconnect delay cannot be negative"))
	}
	return errors.Join(errs...)
}
