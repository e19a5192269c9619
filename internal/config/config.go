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
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	SwaggerEnabled     bool

	RiotAPIKey                string
	RiotPlatform              string
	RiotRegion                string
	RiotPlatformBaseURL       string
	RiotRegionalBaseURL       string
	RiotTimeout               time.Duration
	RiotRatePerSecond         float64
	RiotRateBurst             int
	RiotMaxAttempts           int
	RiotBackoffInitial        time.Duration
	RiotBackoffMax            time.Duration
	RiotCircuitEnabled        bool
	RiotCircuitFailureCount   int
	RiotCircuitOpenTimeout    time.Duration
	RiotCircuitHalfOpenMaxReq int

	DDragonBaseURL string
	DDragonLocale  string
	DDragonTTL     time.Duration

	HistoryMaxGames     int
	HistoryCacheTTL     time.Duration
	HistoryWorkers      int
	PerformanceCacheTTL time.Duration
	AccountCacheTTL     time.Duration
	SummaryWorkers      int
	SummaryDeadline     time.Duration

	CacheBackend    string
	CacheMaxEntries int
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisKeyPrefix  string

	UptraceEnabled             bool
	UptraceDSN                 string
	PprofEnabled               bool
	PprofAddr                  string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// Load reads an optional .env file and then the process environment. Real env vars win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}
	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	readTimeout, err := getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsPositiveDuration("APP_WRITE_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "rift-scout-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		SwaggerEnabled:     swaggerEnabled,
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if err := loadRiot(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadPipeline(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadCache(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadRiot(cfg *Config) error {
	cfg.RiotAPIKey = strings.TrimSpace(getEnv("RIOT_API_KEY", ""))
	if cfg.RiotAPIKey == "" {
		return fmt.Errorf("RIOT_API_KEY is required")
	}
	cfg.RiotPlatform = strings.ToLower(strings.TrimSpace(getEnv("RIOT_PLATFORM", "na1")))
	cfg.RiotRegion = strings.ToLower(strings.TrimSpace(getEnv("RIOT_REGION", "americas")))
	cfg.RiotPlatformBaseURL = strings.TrimSpace(getEnv("RIOT_PLATFORM_BASE_URL", ""))
	cfg.RiotRegionalBaseURL = strings.TrimSpace(getEnv("RIOT_REGIONAL_BASE_URL", ""))

	var err error
	if cfg.RiotTimeout, err = getEnvAsPositiveDuration("RIOT_TIMEOUT", "5s"); err != nil {
		return err
	}

	cfg.RiotRatePerSecond, err = strconv.ParseFloat(getEnv("RIOT_RATE_PER_SECOND", "20"), 64)
	if err != nil {
		return fmt.Errorf("parse RIOT_RATE_PER_SECOND: %w", err)
	}
	if cfg.RiotRatePerSecond < 0 {
		return fmt.Errorf("RIOT_RATE_PER_SECOND must be >= 0")
	}
	if cfg.RiotRateBurst, err = getEnvAsInt("RIOT_RATE_BURST", 20); err != nil {
		return fmt.Errorf("parse RIOT_RATE_BURST: %w", err)
	}
	if cfg.RiotRateBurst < 1 {
		return fmt.Errorf("RIOT_RATE_BURST must be >= 1")
	}

	if cfg.RiotMaxAttempts, err = getEnvAsInt("RIOT_MAX_ATTEMPTS", 3); err != nil {
		return fmt.Errorf("parse RIOT_MAX_ATTEMPTS: %w", err)
	}
	if cfg.RiotMaxAttempts < 1 {
		return fmt.Errorf("RIOT_MAX_ATTEMPTS must be >= 1")
	}
	if cfg.RiotBackoffInitial, err = getEnvAsPositiveDuration("RIOT_BACKOFF_INITIAL", "500ms"); err != nil {
		return err
	}
	if cfg.RiotBackoffMax, err = getEnvAsPositiveDuration("RIOT_BACKOFF_MAX", "4s"); err != nil {
		return err
	}
	if cfg.RiotBackoffMax < cfg.RiotBackoffInitial {
		return fmt.Errorf("RIOT_BACKOFF_MAX must be >= RIOT_BACKOFF_INITIAL")
	}

	if cfg.RiotCircuitEnabled, err = strconv.ParseBool(getEnv("RIOT_CIRCUIT_ENABLED", "true")); err != nil {
		return fmt.Errorf("parse RIOT_CIRCUIT_ENABLED: %w", err)
	}
	if cfg.RiotCircuitFailureCount, err = getEnvAsInt("RIOT_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return fmt.Errorf("parse RIOT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.RiotCircuitFailureCount < 1 {
		return fmt.Errorf("RIOT_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.RiotCircuitOpenTimeout, err = getEnvAsPositiveDuration("RIOT_CIRCUIT_OPEN_TIMEOUT", "15s"); err != nil {
		return err
	}
	if cfg.RiotCircuitHalfOpenMaxReq, err = getEnvAsInt("RIOT_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return fmt.Errorf("parse RIOT_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.RiotCircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("RIOT_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cfg.DDragonBaseURL = strings.TrimSpace(getEnv("DDRAGON_BASE_URL", "https://ddragon.leagueoflegends.com"))
	cfg.DDragonLocale = strings.TrimSpace(getEnv("DDRAGON_LOCALE", "en_US"))
	if cfg.DDragonTTL, err = getEnvAsPositiveDuration("DDRAGON_TTL", "24h"); err != nil {
		return err
	}

	return nil
}

func loadPipeline(cfg *Config) error {
	var err error
	if cfg.HistoryMaxGames, err = getEnvAsInt("HISTORY_MAX_GAMES", 20); err != nil {
		return fmt.Errorf("parse HISTORY_MAX_GAMES: %w", err)
	}
	if cfg.HistoryMaxGames < 1 || cfg.HistoryMaxGames > 100 {
		return fmt.Errorf("HISTORY_MAX_GAMES must be between 1 and 100")
	}
	if cfg.HistoryCacheTTL, err = getEnvAsPositiveDuration("HISTORY_CACHE_TTL", "2m"); err != nil {
		return err
	}
	if cfg.HistoryWorkers, err = getEnvAsInt("HISTORY_WORKERS", 4); err != nil {
		return fmt.Errorf("parse HISTORY_WORKERS: %w", err)
	}
	if cfg.HistoryWorkers < 1 {
		return fmt.Errorf("HISTORY_WORKERS must be >= 1")
	}
	if cfg.PerformanceCacheTTL, err = getEnvAsPositiveDuration("PERFORMANCE_CACHE_TTL", "2m"); err != nil {
		return err
	}
	if cfg.AccountCacheTTL, err = getEnvAsPositiveDuration("ACCOUNT_CACHE_TTL", "10m"); err != nil {
		return err
	}
	if cfg.SummaryWorkers, err = getEnvAsInt("SUMMARY_WORKERS", 8); err != nil {
		return fmt.Errorf("parse SUMMARY_WORKERS: %w", err)
	}
	if cfg.SummaryWorkers < 1 || cfg.SummaryWorkers > 16 {
		return fmt.Errorf("SUMMARY_WORKERS must be between 1 and 16")
	}
	if cfg.SummaryDeadline, err = getEnvAsPositiveDuration("SUMMARY_DEADLINE", "8s"); err != nil {
		return err
	}
	return nil
}

func loadCache(cfg *Config) error {
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(getEnv("CACHE_BACKEND", CacheBackendMemory)))
	switch cfg.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis, CacheBackendNone:
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q: valid values are %s, %s, %s",
			cfg.CacheBackend, CacheBackendMemory, CacheBackendRedis, CacheBackendNone)
	}

	var err error
	if cfg.CacheMaxEntries, err = getEnvAsInt("CACHE_MAX_ENTRIES", 10000); err != nil {
		return fmt.Errorf("parse CACHE_MAX_ENTRIES: %w", err)
	}
	if cfg.CacheMaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be >= 1")
	}

	cfg.RedisAddr = strings.TrimSpace(getEnv("REDIS_ADDR", ""))
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisKeyPrefix = strings.TrimSpace(getEnv("REDIS_KEY_PREFIX", "rift-scout:"))
	if cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return fmt.Errorf("parse REDIS_DB: %w", err)
	}
	if cfg.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must be >= 0")
	}
	if cfg.CacheBackend == CacheBackendRedis && cfg.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PprofEnabled, err = strconv.ParseBool(getEnv("PPROF_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	return nil
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

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
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

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
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
