package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrMissingToken возвращается, если токен бота не задан.
var ErrMissingToken = errors.New("bot token is not configured (BOT_TOKEN)")

// Config описывает основные параметры бота.
type Config struct {
	Agent struct {
		LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
		LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
	} `yaml:"agent"`
	Bot struct {
		Token            string `yaml:"token" env:"BOT_TOKEN"`
		GuildID          string `yaml:"guild_id" env:"GUILD_ID"`
		Status           string `yaml:"status"`
		RequestTimeoutMS int    `yaml:"request_timeout_ms"`
	} `yaml:"bot"`
	APIs struct {
		NinjaKey       string `yaml:"ninja_key" env:"API_NINJA_KEY"`
		FinnhubKey     string `yaml:"finnhub_key" env:"FINHUB_KEY"`
		PolygonKey     string `yaml:"polygon_key" env:"POLYGON_KEY"`
		SolarSystemKey string `yaml:"solar_system_key" env:"SOLAR_SYSTEM_KEY"`
		TimeoutMS      int    `yaml:"timeout_ms"`
	} `yaml:"apis"`
	Web struct {
		Enabled          bool   `yaml:"enabled"`
		ListenAddr       string `yaml:"listen_addr"`
		ReadTimeoutMS    int    `yaml:"read_timeout_ms"`
		WriteTimeoutMS   int    `yaml:"write_timeout_ms"`
		RequestTimeoutMS int    `yaml:"request_timeout_ms"`
		ShutdownTimeoutS int    `yaml:"shutdown_timeout_s"`
		MaxBodyBytes     int64  `yaml:"max_body_bytes"`
	} `yaml:"web"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	var cfg Config
	cfg.Agent.LogLevel = "info"
	cfg.Agent.LogFormat = "json"
	cfg.Bot.Status = "/help to view commands"
	cfg.Bot.RequestTimeoutMS = 15000
	cfg.APIs.TimeoutMS = 10000
	cfg.Web.Enabled = false
	cfg.Web.ListenAddr = "127.0.0.1:8080"
	cfg.Web.ReadTimeoutMS = 2000
	cfg.Web.WriteTimeoutMS = 20000
	cfg.Web.RequestTimeoutMS = 15000
	cfg.Web.ShutdownTimeoutS = 5
	cfg.Web.MaxBodyBytes = 1 << 16
	return cfg
}

// Load читает конфиг из файла YAML поверх значений по умолчанию,
// затем накладывает переменные окружения.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- путь к конфигу задается доверенным оператором.
		if err != nil {
			return cfg, err
		}
		if len(data) == 0 {
			return cfg, errors.New("config file is empty")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate проверяет параметры, без которых бот не может подключиться.
// Ключи внешних API не проверяются: их отсутствие проявляется при вызове команды.
func (c Config) Validate() error {
	if c.Bot.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// RequestTimeout возвращает предельное время обработки одного вызова команды.
func (c Config) RequestTimeout() time.Duration {
	if c.Bot.RequestTimeoutMS <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Bot.RequestTimeoutMS) * time.Millisecond
}
