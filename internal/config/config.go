package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Пределы, которые конфигурация не может превысить
const (
	MaxDimension     = 64
	MaxActions       = 10
	MaxHistoryLines  = 20
	DefaultDirectory = "data/history"
)

// Config корневая структура конфигурации сервера правок
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Limits    LimitsConfig    `yaml:"limits"`
	History   HistoryConfig   `yaml:"history"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	World     WorldConfig     `yaml:"world"`
	Auth      AuthConfig      `yaml:"auth"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
	TickMillis  int `yaml:"tick_ms"`
}

type LimitsConfig struct {
	MaxW            int `yaml:"max_w"`
	MaxH            int `yaml:"max_h"`
	MaxD            int `yaml:"max_d"`
	ActionsPerActor int `yaml:"actions_per_actor"`
	HistoryLines    int `yaml:"history_lines"`
}

type HistoryConfig struct {
	Persist   bool   `yaml:"persist"`
	Backend   string `yaml:"backend"` // file|badger|redis|maria|sqlite|mongo|memory
	Directory string `yaml:"directory"`

	MariaDSN string `yaml:"maria_dsn"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type DimensionConfig struct {
	ID        string `yaml:"id"`
	Generator string `yaml:"generator"` // perlin|flat|void
	ReadOnly  bool   `yaml:"read_only"`
	MinY      int    `yaml:"min_y"`
	MaxY      int    `yaml:"max_y"`
}

type WorldConfig struct {
	Seed       int64             `yaml:"seed"`
	Dimensions []DimensionConfig `yaml:"dimensions"`
}

type OperatorConfig struct {
	Username string `yaml:"username"`
	// PasswordHash bcrypt хеш; Password допускается только для разработки
	PasswordHash string `yaml:"password_hash"`
	Password     string `yaml:"password"`
	// ActorID стабильный идентификатор для истории; пусто означает вывод из имени
	ActorID string `yaml:"actor_id"`
}

type AuthConfig struct {
	JWTSecret string           `yaml:"jwt_secret"`
	TokenTTL  int              `yaml:"token_ttl_minutes"`
	Operators []OperatorConfig `yaml:"operators"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default конфигурация по умолчанию: персистентность выключена, два измерения
func Default() *Config {
	return &Config{
		Server: ServerConfig{TickMillis: 50},
		Limits: LimitsConfig{
			MaxW: MaxDimension, MaxH: MaxDimension, MaxD: MaxDimension,
			ActionsPerActor: MaxActions,
			HistoryLines:    MaxHistoryLines,
		},
		History: HistoryConfig{Backend: "file", Directory: DefaultDirectory},
		EventBus: EventBusConfig{
			Stream:    "VOXEL_EVENTS",
			Retention: 24,
		},
		World: WorldConfig{
			Seed: 1337,
			Dimensions: []DimensionConfig{
				{ID: "overworld", Generator: "perlin", MinY: -64, MaxY: 320},
				{ID: "nether", Generator: "flat", MinY: 0, MaxY: 128},
			},
		},
		Auth:      AuthConfig{TokenTTL: 60},
		Telemetry: TelemetryConfig{ServiceName: "voxel-edit"},
		Logging:   LoggingConfig{Level: "INFO", Dir: "logs"},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "VOXEL_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "VOXEL_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

func clamp(v, lo, hi, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return min(max(v, lo), hi)
}

// Validate приводит пределы к допустимым диапазонам и проверяет обязательные поля
func (c *Config) Validate() error {
	c.Limits.MaxW = clamp(c.Limits.MaxW, 1, MaxDimension, MaxDimension)
	c.Limits.MaxH = clamp(c.Limits.MaxH, 1, MaxDimension, MaxDimension)
	c.Limits.MaxD = clamp(c.Limits.MaxD, 1, MaxDimension, MaxDimension)
	c.Limits.ActionsPerActor = clamp(c.Limits.ActionsPerActor, 1, MaxActions, MaxActions)
	c.Limits.HistoryLines = clamp(c.Limits.HistoryLines, 1, MaxHistoryLines, MaxHistoryLines)

	if c.Server.TickMillis <= 0 {
		c.Server.TickMillis = 50
	}
	if c.History.Directory == "" {
		c.History.Directory = DefaultDirectory
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 60
	}

	if len(c.World.Dimensions) == 0 {
		return fmt.Errorf("world.dimensions: нужно хотя бы одно измерение")
	}
	seen := make(map[string]bool, len(c.World.Dimensions))
	for _, d := range c.World.Dimensions {
		if d.ID == "" {
			return fmt.Errorf("world.dimensions: пустой id")
		}
		if seen[d.ID] {
			return fmt.Errorf("world.dimensions: повтор id %q", d.ID)
		}
		seen[d.ID] = true
		switch d.Generator {
		case "", "perlin", "flat", "void":
		default:
			return fmt.Errorf("world.dimensions[%s]: неизвестный генератор %q", d.ID, d.Generator)
		}
	}

	switch c.History.Backend {
	case "", "file", "badger", "redis", "maria", "sqlite", "mongo", "memory":
	default:
		return fmt.Errorf("history.backend: неизвестное хранилище %q", c.History.Backend)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, cfg.Validate() // конфиг не задан, использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
