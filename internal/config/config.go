package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/courtsidehq/parlay-league/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	DBURL                   string
	DBDisablePreparedBinary bool

	CacheEnabled bool
	CacheTTL     time.Duration

	CORSAllowedOrigins []string

	AccountBaseURL               string
	AccountIntrospectURL         string
	AccountAdminKey              string
	AccountTimeout               time.Duration
	AccountCircuitEnabled        bool
	AccountCircuitFailureCount   int
	AccountCircuitOpenTimeout    time.Duration
	AccountCircuitHalfOpenMaxReq int

	OddsFeedEnabled               bool
	OddsFeedBaseURL               string
	OddsFeedSportKey              string
	OddsFeedAPIKeys               []string
	OddsFeedTimeout               time.Duration
	OddsFeedMaxRetries            int
	OddsFeedPropWorkers           int
	OddsFeedCircuitEnabled        bool
	OddsFeedCircuitFailureCount   int
	OddsFeedCircuitOpenTimeout    time.Duration
	OddsFeedCircuitHalfOpenMaxReq int

	InternalJobToken            string
	QStashEnabled               bool
	QStashBaseURL               string
	QStashToken                 string
	QStashTargetBaseURL         string
	QStashRetries               int
	QStashCircuitEnabled        bool
	QStashCircuitFailureCount   int
	QStashCircuitOpenTimeout    time.Duration
	QStashCircuitHalfOpenMaxReq int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	accountTimeout, err := time.ParseDuration(getEnv("ACCOUNT_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNT_TIMEOUT: %w", err)
	}
	accountCircuitEnabled, err := strconv.ParseBool(getEnv("ACCOUNT_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNT_CIRCUIT_ENABLED: %w", err)
	}
	accountCircuitFailureCount, err := getEnvAsInt("ACCOUNT_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if accountCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("ACCOUNT_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	accountCircuitOpenTimeout, err := time.ParseDuration(getEnv("ACCOUNT_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNT_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if accountCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("ACCOUNT_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	accountCircuitHalfOpenMaxReq, err := getEnvAsInt("ACCOUNT_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNT_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if accountCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("ACCOUNT_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	oddsFeedEnabled, err := strconv.ParseBool(getEnv("ODDSFEED_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSFEED_ENABLED: %w", err)
	}
	oddsFeedAPIKeys := splitCSV(getEnv("ODDSFEED_API_KEYS", ""))
	if oddsFeedEnabled && len(oddsFeedAPIKeys) == 0 {
		return Config{}, fmt.Errorf("ODDSFEED_API_KEYS is required when ODDSFEED_ENABLED=true")
	}
	oddsFeedTimeout, err := time.ParseDuration(getEnv("ODDSFEED_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSFEED_TIMEOUT: %w", err)
	}
	if oddsFeedTimeout <= 0 {
		return Config{}, fmt.Errorf("ODDSFEED_TIMEOUT must be > 0")
	}
	oddsFeedMaxRetries, err := getEnvAsInt("ODDSFEED_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSFEED_MAX_RETRIES: %w", err)
	}
	if oddsFeedMaxRetries < 0 {
		return Config{}, fmt.Errorf("ODDSFEED_MAX_RETRIES must be >= 0")
	}
	oddsFeedPropWorkers, err := getEnvAsInt("ODDSFEED_PROP_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSFEED_PROP_WORKERS: %w", err)
	}
	if oddsFeedPropWorkers < 1 {
		return Config{}, fmt.Errorf("ODDSFEED_PROP_WORKERS must be >= 1")
	}
	oddsFeedCircuitEnabled, err := strconv.ParseBool(getEnv("ODDSFEED_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSFEED_CIRCUIT_ENABLED: %w", err)
	}
	oddsFeedCircuitFailureCount, err := getEnvAsInt("ODDSFEED_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSFEED_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if oddsFeedCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("ODDSFEED_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	oddsFeedCircuitOpenTimeout, err := time.ParseDuration(getEnv("ODDSFEED_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSFEED_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if oddsFeedCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("ODDSFEED_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	oddsFeedCircuitHalfOpenMaxReq, err := getEnvAsInt("ODDSFEED_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSFEED_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if oddsFeedCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("ODDSFEED_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	qstashEnabled, err := strconv.ParseBool(getEnv("QSTASH_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_ENABLED: %w", err)
	}
	qstashRetries, err := getEnvAsInt("QSTASH_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if qstashRetries < 0 {
		return Config{}, fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}
	qstashCircuitEnabled, err := strconv.ParseBool(getEnv("QSTASH_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_ENABLED: %w", err)
	}
	qstashCircuitFailureCount, err := getEnvAsInt("QSTASH_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if qstashCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	qstashCircuitOpenTimeout, err := time.ParseDuration(getEnv("QSTASH_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if qstashCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	qstashCircuitHalfOpenMaxReq, err := getEnvAsInt("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if qstashCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	qstashBaseURL := strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io"))
	qstashToken := strings.TrimSpace(getEnv("QSTASH_TOKEN", ""))
	qstashTargetBaseURL := strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", ""))
	internalJobToken := strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))
	if qstashEnabled {
		if qstashToken == "" {
			return Config{}, fmt.Errorf("QSTASH_TOKEN is required when QSTASH_ENABLED=true")
		}
		if qstashTargetBaseURL == "" {
			return Config{}, fmt.Errorf("QSTASH_TARGET_BASE_URL is required when QSTASH_ENABLED=true")
		}
		if internalJobToken == "" {
			return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when QSTASH_ENABLED=true")
		}
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "parlay-league-api"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,

		// Empty means no database: the app falls back to in-memory
		// repositories, which is the dev default.
		DBURL:                   strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary: dbDisablePreparedBinary,

		CacheEnabled: cacheEnabled,
		CacheTTL:     cacheTTL,

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		AccountBaseURL:               getEnv("ACCOUNT_BASE_URL", "http://localhost:8081"),
		AccountIntrospectURL:         getEnv("ACCOUNT_INTROSPECT_PATH", "/v1/auth/introspect"),
		AccountAdminKey:              strings.TrimSpace(getEnv("ACCOUNT_ADMIN_KEY", "")),
		AccountTimeout:               accountTimeout,
		AccountCircuitEnabled:        accountCircuitEnabled,
		AccountCircuitFailureCount:   accountCircuitFailureCount,
		AccountCircuitOpenTimeout:    accountCircuitOpenTimeout,
		AccountCircuitHalfOpenMaxReq: accountCircuitHalfOpenMaxReq,

		OddsFeedEnabled:               oddsFeedEnabled,
		OddsFeedBaseURL:               strings.TrimSpace(getEnv("ODDSFEED_BASE_URL", "https://api.the-odds-api.com/v4")),
		OddsFeedSportKey:              strings.TrimSpace(getEnv("ODDSFEED_SPORT_KEY", "basketball_nba")),
		OddsFeedAPIKeys:               oddsFeedAPIKeys,
		OddsFeedTimeout:               oddsFeedTimeout,
		OddsFeedMaxRetries:            oddsFeedMaxRetries,
		OddsFeedPropWorkers:           oddsFeedPropWorkers,
		OddsFeedCircuitEnabled:        oddsFeedCircuitEnabled,
		OddsFeedCircuitFailureCount:   oddsFeedCircuitFailureCount,
		OddsFeedCircuitOpenTimeout:    oddsFeedCircuitOpenTimeout,
		OddsFeedCircuitHalfOpenMaxReq: oddsFeedCircuitHalfOpenMaxReq,

		InternalJobToken:            internalJobToken,
		QStashEnabled:               qstashEnabled,
		QStashBaseURL:               qstashBaseURL,
		QStashToken:                 qstashToken,
		QStashTargetBaseURL:         qstashTargetBaseURL,
		QStashRetries:               qstashRetries,
		QStashCircuitEnabled:        qstashCircuitEnabled,
		QStashCircuitFailureCount:   qstashCircuitFailureCount,
		QStashCircuitOpenTimeout:    qstashCircuitOpenTimeout,
		QStashCircuitHalfOpenMaxReq: qstashCircuitHalfOpenMaxReq,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled:     uptraceEnabled,
		UptraceDSN:         uptraceDSN,
		UptraceLogsEnabled: uptraceLogsEnabled,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		LogLevel: parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
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
