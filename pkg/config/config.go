package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream  UpstreamConfig
	Dashboard DashboardConfig
	Search    SearchConfig
	Export    ExportConfig
	CORS      CORSConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

// UpstreamConfig describes the course-registration API the dashboard talks to.
type UpstreamConfig struct {
	BaseURL          string
	ProxyURL         string
	UserAgent        string
	Timeout          time.Duration
	LoginPath        string
	LogoutPath       string
	CoursesPath      string
	SectionsPath     string
	RegisterPath     string
	SectionPageLimit int
}

// DashboardConfig controls the bearer tokens issued to dashboard clients.
type DashboardConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	Issuer      string
}

// SearchConfig tunes the section search.
type SearchConfig struct {
	MinQueryLength int
	MaxGroups      int
}

// ExportConfig tunes export file naming.
type ExportConfig struct {
	FilenamePrefix string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	pageLimit := v.GetInt("UPSTREAM_SECTION_PAGE_LIMIT")
	if pageLimit <= 0 {
		pageLimit = 99999
	}
	cfg.Upstream = UpstreamConfig{
		BaseURL:          strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		ProxyURL:         v.GetString("UPSTREAM_PROXY_URL"),
		UserAgent:        v.GetString("UPSTREAM_USER_AGENT"),
		Timeout:          parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 0),
		LoginPath:        v.GetString("UPSTREAM_LOGIN_PATH"),
		LogoutPath:       v.GetString("UPSTREAM_LOGOUT_PATH"),
		CoursesPath:      v.GetString("UPSTREAM_COURSES_PATH"),
		SectionsPath:     v.GetString("UPSTREAM_SECTIONS_PATH"),
		RegisterPath:     v.GetString("UPSTREAM_REGISTER_PATH"),
		SectionPageLimit: pageLimit,
	}

	cfg.Dashboard = DashboardConfig{
		TokenSecret: v.GetString("DASHBOARD_TOKEN_SECRET"),
		TokenTTL:    parseDuration(v.GetString("DASHBOARD_TOKEN_TTL"), 12*time.Hour),
		Issuer:      v.GetString("DASHBOARD_TOKEN_ISSUER"),
	}

	cfg.Search = SearchConfig{
		MinQueryLength: v.GetInt("SEARCH_MIN_QUERY_LENGTH"),
		MaxGroups:      v.GetInt("SEARCH_MAX_GROUPS"),
	}

	cfg.Export = ExportConfig{FilenamePrefix: v.GetString("EXPORT_FILENAME_PREFIX")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("UPSTREAM_BASE_URL", "https://ftugate.ftu.edu.vn")
	v.SetDefault("UPSTREAM_PROXY_URL", "")
	v.SetDefault("UPSTREAM_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36")
	v.SetDefault("UPSTREAM_TIMEOUT", "")
	v.SetDefault("UPSTREAM_LOGIN_PATH", "/api/auth/login")
	v.SetDefault("UPSTREAM_LOGOUT_PATH", "/api/auth/logout")
	v.SetDefault("UPSTREAM_COURSES_PATH", "/cq/hanoi/api/dkmh/w-locdskqdkmhsinhvien")
	v.SetDefault("UPSTREAM_SECTIONS_PATH", "/cq/hanoi/api/dkmh/w-locdsnhomto")
	v.SetDefault("UPSTREAM_REGISTER_PATH", "/cq/hanoi/api/dkmh/w-xulydkmhsinhvien")
	v.SetDefault("UPSTREAM_SECTION_PAGE_LIMIT", 99999)

	v.SetDefault("DASHBOARD_TOKEN_SECRET", "dev_dashboard_secret")
	v.SetDefault("DASHBOARD_TOKEN_TTL", "12h")
	v.SetDefault("DASHBOARD_TOKEN_ISSUER", "qldt-dashboard")

	v.SetDefault("SEARCH_MIN_QUERY_LENGTH", 3)
	v.SetDefault("SEARCH_MAX_GROUPS", 5)

	v.SetDefault("EXPORT_FILENAME_PREFIX", "danh_sach_mon_hoc")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
