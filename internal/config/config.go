package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/spf13/viper"
)

const EnvPrefix = "ACTIONS"

var (
	ErrMissingBaseURL = errors.New("api.base_url is not set")
	ErrMissingAPIKey  = errors.New("api.api_key is not set")
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig описывает подключение к сервису action items
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      string `mapstructure:"port"`
	APIKey    string `mapstructure:"api_key"`
	SeedFile  string `mapstructure:"seed_file"`
	RateLimit int    `mapstructure:"rate_limit"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.api_key", "")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.seed_file", "")
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("logging.development", false)
}

// Load читает config.yml (если есть) и переменные окружения ACTIONS_*.
// Явно переданный путь обязан существовать.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// api.api_key по автоматическому правилу стал бы ACTIONS_API_API_KEY
	if err := v.BindEnv("api.api_key", EnvPrefix+"_API_KEY"); err != nil {
		return nil, fmt.Errorf("привязка окружения: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("не могу прочитать %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("ошибка парсинга config.yml: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации: %w", err)
	}

	cfg.API.BaseURL = strings.TrimSpace(cfg.API.BaseURL)
	cfg.API.APIKey = strings.TrimSpace(cfg.API.APIKey)
	return &cfg, nil
}

// Validate checks what the client needs before any request is made.
func (a APIConfig) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if a.BaseURL == "" {
		errs = errs.Append("api.base_url", ErrMissingBaseURL)
	}
	if a.APIKey == "" {
		errs = errs.Append("api.api_key", ErrMissingAPIKey)
	}
	if a.Timeout < 0 {
		errs = errs.Append("api.timeout", fmt.Errorf("api.timeout must not be negative, got %s", a.Timeout))
	}
	return errs.ToError()
}

func (s ServerConfig) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if s.Port == "" {
		errs = errs.Append("server.port", errors.New("server.port is not set"))
	}
	if s.RateLimit <= 0 {
		errs = errs.Append("server.rate_limit", fmt.Errorf("server.rate_limit must be positive, got %d", s.RateLimit))
	}
	return errs.ToError()
}

func (c *Config) GetServerAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}
