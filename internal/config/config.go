package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	MetricsAddr                string
	DBURL                      string
	RedisAddr                  string
	RedisPassword              string
	RedisDB                    int
	CORSAllowedOrigins         []string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	ShutdownTimeout            time.Duration
	SessionTTL                 time.Duration
	SyncPayBaseURL             string
	SyncPayClientID            string
	SyncPayClientSecret        string
	SyncPayWebhookURL          string
	SyncPayTimeout             time.Duration
	SyncPayMaxRetries          int
	SyncPayCircuitEnabled      bool
	SyncPayCircuitFailureCount int
	SyncPayCircuitOpenTimeout  time.Duration
	SyncPayCircuitHalfOpenReq  int
	DepositPollInterval        time.Duration
	DepositPollMaxAttempts     int
	DepositPersistRetries      int
	PrizeBettorCountMode       string
	PrizeCacheTTL              time.Duration
	DiscordWebhookURL          string
	DiscordWorkers             int
	DiscordTimeout             time.Duration
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeUploadRate        time.Duration
	LogLevel                   logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:              appEnv,
		ServiceName:         getEnv("SERVICE_NAME", "bolacup"),
		ServiceVersion:      getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr:         getEnv("METRICS_ADDR", ":9090"),
		DBURL:               strings.TrimSpace(getEnv("DATABASE_URL", "")),
		RedisAddr:           strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		SyncPayBaseURL:      strings.TrimSpace(getEnv("SYNCPAY_BASE_URL", "https://api.syncpayments.com.br")),
		SyncPayClientID:     strings.TrimSpace(getEnv("SYNCPAY_CLIENT_ID", "")),
		SyncPayClientSecret: strings.TrimSpace(getEnv("SYNCPAY_CLIENT_SECRET", "")),
		SyncPayWebhookURL:   strings.TrimSpace(getEnv("SYNCPAY_WEBHOOK_URL", "")),
		DiscordWebhookURL:   strings.TrimSpace(getEnv("DISCORD_WEBHOOK_URL", "")),
		PprofAddr:           getEnv("PPROF_ADDR", ":6060"),
		LogLevel:            parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	}

	cfg.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	cfg.ReadTimeout, err = getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.WriteTimeout, err = getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout, err = getEnvAsDuration("SHUTDOWN_TIMEOUT", 20*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL, err = getEnvAsDuration("SESSION_TTL", 30*24*time.Hour)
	if err != nil {
		return Config{}, err
	}

	cfg.SyncPayTimeout, err = getEnvAsDuration("SYNCPAY_TIMEOUT", 20*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.SyncPayMaxRetries, err = getEnvAsInt("SYNCPAY_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNCPAY_MAX_RETRIES: %w", err)
	}
	cfg.SyncPayCircuitEnabled, err = getEnvAsBool("SYNCPAY_CIRCUIT_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	cfg.SyncPayCircuitFailureCount, err = getEnvAsInt("SYNCPAY_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNCPAY_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	cfg.SyncPayCircuitOpenTimeout, err = getEnvAsDuration("SYNCPAY_CIRCUIT_OPEN_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.SyncPayCircuitHalfOpenReq, err = getEnvAsInt("SYNCPAY_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNCPAY_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	cfg.DepositPollInterval, err = getEnvAsDuration("DEPOSIT_POLL_INTERVAL", 3*time.Second)
	if err != nil {
		return Config{}, err
	}
	if cfg.DepositPollInterval <= 0 {
		return Config{}, fmt.Errorf("DEPOSIT_POLL_INTERVAL must be > 0")
	}
	cfg.DepositPollMaxAttempts, err = getEnvAsInt("DEPOSIT_POLL_MAX_ATTEMPTS", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse DEPOSIT_POLL_MAX_ATTEMPTS: %w", err)
	}
	if cfg.DepositPollMaxAttempts < 1 {
		return Config{}, fmt.Errorf("DEPOSIT_POLL_MAX_ATTEMPTS must be >= 1")
	}
	cfg.DepositPersistRetries, err = getEnvAsInt("DEPOSIT_PERSIST_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse DEPOSIT_PERSIST_RETRIES: %w", err)
	}

	cfg.PrizeBettorCountMode = strings.ToLower(strings.TrimSpace(getEnv("PRIZE_BETTOR_COUNT_MODE", "rows")))
	switch cfg.PrizeBettorCountMode {
	case "rows", "distinct":
	default:
		return Config{}, fmt.Errorf("invalid PRIZE_BETTOR_COUNT_MODE %q: valid values are rows, distinct", cfg.PrizeBettorCountMode)
	}
	cfg.PrizeCacheTTL, err = getEnvAsDuration("PRIZE_CACHE_TTL", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg.DiscordWorkers, err = getEnvAsInt("DISCORD_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse DISCORD_WORKERS: %w", err)
	}
	cfg.DiscordTimeout, err = getEnvAsDuration("DISCORD_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false)
	if err != nil {
		return Config{}, err
	}

	cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName)
	cfg.PyroscopeAuthToken = getEnv("PYROSCOPE_AUTH_TOKEN", "")
	cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}

	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
