package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-admin/internal/platform/logging"
)

// Config stores runtime configuration for the admin client.
type Config struct {
	AppEnv           string
	ServiceName      string
	ServiceVersion   string
	LogLevel         logging.Level
	LogFormat        logging.Format
	APIBaseURL       string
	APITimeout       time.Duration
	APIBearerToken   string
	ListPageSize     int
	ListSort         []string
	Location         *time.Location
	ReferenceWorkers int
	UptraceEnabled   bool
	UptraceDSN       string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(getEnv("API_BASE_URL", "http://localhost:8080")), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_BASE_URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Config{}, fmt.Errorf("API_BASE_URL must be an http(s) url, got %q", baseURL)
	}

	var apiTimeout time.Duration
	if raw := strings.TrimSpace(os.Getenv("API_TIMEOUT")); raw != "" {
		apiTimeout, err = time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse API_TIMEOUT: %w", err)
		}
		if apiTimeout <= 0 {
			return Config{}, fmt.Errorf("API_TIMEOUT must be > 0")
		}
	}

	pageSize, err := getEnvAsInt("LIST_PAGE_SIZE", 20)
	if err != nil {
		return Config{}, fmt.Errorf("parse LIST_PAGE_SIZE: %w", err)
	}
	if pageSize < 1 {
		return Config{}, fmt.Errorf("LIST_PAGE_SIZE must be >= 1")
	}

	listSort := splitCSV(getEnv("LIST_SORT", "id,asc"))
	if len(listSort) > 2 {
		return Config{}, fmt.Errorf("LIST_SORT must be field[,asc|desc], got %q", strings.Join(listSort, ","))
	}
	if len(listSort) == 2 {
		direction := strings.ToLower(listSort[1])
		if direction != "asc" && direction != "desc" {
			return Config{}, fmt.Errorf("invalid LIST_SORT direction %q", listSort[1])
		}
		listSort[1] = direction
	}

	location := time.Local
	if name := strings.TrimSpace(getEnv("APP_TIMEZONE", "")); name != "" {
		location, err = time.LoadLocation(name)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_TIMEZONE: %w", err)
		}
	}

	workers, err := getEnvAsInt("REFERENCE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFERENCE_WORKERS: %w", err)
	}
	if workers < 1 {
		return Config{}, fmt.Errorf("REFERENCE_WORKERS must be >= 1")
	}

	formatDefault := string(logging.FormatJSON)
	if appEnv == EnvDev {
		formatDefault = string(logging.FormatConsole)
	}

	return Config{
		AppEnv:           appEnv,
		ServiceName:      getEnv("APP_SERVICE_NAME", "tournament-admin"),
		ServiceVersion:   getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:         logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:        logging.ParseFormat(getEnv("APP_LOG_FORMAT", formatDefault)),
		APIBaseURL:       baseURL,
		APITimeout:       apiTimeout,
		APIBearerToken:   strings.TrimSpace(getEnv("API_BEARER_TOKEN", "")),
		ListPageSize:     pageSize,
		ListSort:         listSort,
		Location:         location,
		ReferenceWorkers: workers,
		UptraceEnabled:   uptraceEnabled,
		UptraceDSN:       uptraceDSN,
	}, nil
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

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
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
