package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Backend  BackendConfig  `yaml:"backend"`
	Session  SessionConfig  `yaml:"session"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type HTTPConfig struct {
	Address            string   `yaml:"address"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	SecureCookies      bool     `yaml:"secure_cookies"`
}

// BackendConfig points at the upstream bus-reservation REST API.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type SessionConfig struct {
	// Store is one of "memory" or "redis".
	Store      string `yaml:"store"`
	CookieName string `yaml:"cookie_name"`
	TTLHours   int    `yaml:"ttl_hours"`
}

func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

type CacheConfig struct {
	StaleAfterSeconds int `yaml:"stale_after_seconds"`
}

func (c CacheConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterSeconds) * time.Second
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	// URL, when set, wins over the discrete fields.
	URL string `yaml:"url"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	EventsTopic string   `yaml:"events_topic"`
	GroupID     string   `yaml:"group_id"`
}

// Enabled reports whether console events should be published at all.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.EventsTopic != ""
}

type WorkerConfig struct {
	AuditRetentionDays  int `yaml:"audit_retention_days"`
	PruneIntervalMinute int `yaml:"prune_interval_minutes"`
}

// LoadConfig reads the YAML file at path, layered over defaults and under
// environment overrides. A missing file is not an error: the console runs
// on defaults plus environment. Variables from a local .env file are
// loaded first and never replace ones already set in the process.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address: ":8080",
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Session: SessionConfig{
			Store:      "memory",
			CookieName: "busres_session",
			TTLHours:   24,
		},
		Cache: CacheConfig{
			StaleAfterSeconds: 60,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "busres_console",
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Kafka: KafkaConfig{
			EventsTopic: "console.events",
			GroupID:     "busres-audit",
		},
		Worker: WorkerConfig{
			AuditRetentionDays:  90,
			PruneIntervalMinute: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.HTTP.Address == "" {
		c.HTTP.Address = def.HTTP.Address
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = def.Backend.BaseURL
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = def.Backend.TimeoutSeconds
	}
	if c.Session.Store == "" {
		c.Session.Store = def.Session.Store
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = def.Session.CookieName
	}
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = def.Session.TTLHours
	}
	if c.Cache.StaleAfterSeconds < 0 {
		c.Cache.StaleAfterSeconds = 0
	}
	if c.Worker.AuditRetentionDays <= 0 {
		c.Worker.AuditRetentionDays = def.Worker.AuditRetentionDays
	}
	if c.Worker.PruneIntervalMinute <= 0 {
		c.Worker.PruneIntervalMinute = def.Worker.PruneIntervalMinute
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("BACKEND_URL"); ok && v != "" {
		c.Backend.BaseURL = v
	}
	if v, ok := lookup("BACKEND_TIMEOUT_SECONDS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BACKEND_TIMEOUT_SECONDS %q: %w", v, err)
		}
		c.Backend.TimeoutSeconds = n
	}
	if v, ok := lookup("HTTP_ADDRESS"); ok && v != "" {
		c.HTTP.Address = v
	}
	if v, ok := lookup("SESSION_STORE"); ok && v != "" {
		c.Session.Store = v
	}
	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		c.Redis.Addr = v
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = splitList(v)
	}
	if v, ok := lookup("DATABASE_DSN"); ok && v != "" {
		c.Database.URL = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok {
		c.HTTP.CORSAllowedOrigins = splitList(v)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session store %q (want memory or redis)", c.Session.Store)
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend base_url %q must be an http(s) URL", c.Backend.BaseURL)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
