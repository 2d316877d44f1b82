package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the engine.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Generator GeneratorConfig
	Knowledge KnowledgeConfig
	Engine    EngineConfig
	SLA       SLAConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines operator token parameters.
type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
}

// GeneratorConfig points at the OpenAI-compatible text backend.
type GeneratorConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	Temperature    float64
	MaxTokens      int
	TimeoutSeconds int
}

// KnowledgeConfig locates the knowledge base file and tuning values.
type KnowledgeConfig struct {
	FilePath          string
	FastPathThreshold float64
}

// EngineConfig tunes the decision pipeline.
type EngineConfig struct {
	HistoryWindow     int
	ContextTTLHours   int
	TurnDedupTTLHours int
	TicketRetries     int
}

// SLAConfig controls the background SLA sweep.
type SLAConfig struct {
	SweepIntervalSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	temperature, err := strconv.ParseFloat(getEnv("GENERATOR_TEMPERATURE", "0.7"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATOR_TEMPERATURE: %w", err)
	}
	threshold, err := strconv.ParseFloat(getEnv("KNOWLEDGE_FASTPATH_THRESHOLD", "0.7"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid KNOWLEDGE_FASTPATH_THRESHOLD: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "dialog-engine"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("AUTH_JWT_SECRET", "dev-secret"),
			TokenTTLMinutes: getEnvAsInt("AUTH_TOKEN_TTL_MINUTES", 60),
		},
		Generator: GeneratorConfig{
			BaseURL:        getEnv("GENERATOR_BASE_URL", "http://localhost:11434/v1"),
			APIKey:         getEnv("GENERATOR_API_KEY", "ollama"),
			Model:          getEnv("GENERATOR_MODEL", "llama3.2:3b"),
			Temperature:    temperature,
			MaxTokens:      getEnvAsInt("GENERATOR_MAX_TOKENS", 512),
			TimeoutSeconds: getEnvAsInt("GENERATOR_TIMEOUT_SECONDS", 20),
		},
		Knowledge: KnowledgeConfig{
			FilePath:          getEnv("KNOWLEDGE_FILE", "knowledge.yaml"),
			FastPathThreshold: threshold,
		},
		Engine: EngineConfig{
			HistoryWindow:     getEnvAsInt("ENGINE_HISTORY_WINDOW", 5),
			ContextTTLHours:   getEnvAsInt("ENGINE_CONTEXT_TTL_HOURS", 24),
			TurnDedupTTLHours: getEnvAsInt("ENGINE_TURN_DEDUP_TTL_HOURS", 24),
			TicketRetries:     getEnvAsInt("ENGINE_TICKET_RETRIES", 3),
		},
		SLA: SLAConfig{
			SweepIntervalSeconds: getEnvAsInt("SLA_SWEEP_INTERVAL_SECONDS", 300),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-call generation deadline.
func (g GeneratorConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// ContextTTL returns how long idle conversation contexts are retained.
func (e EngineConfig) ContextTTL() time.Duration {
	if e.ContextTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(e.ContextTTLHours) * time.Hour
}

// TurnDedupTTL returns how long processed-turn markers are retained.
func (e EngineConfig) TurnDedupTTL() time.Duration {
	if e.TurnDedupTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(e.TurnDedupTTLHours) * time.Hour
}

// SweepInterval returns the SLA sweep period.
func (s SLAConfig) SweepInterval() time.Duration {
	if s.SweepIntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.SweepIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
