package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config file or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Site identity, used in outgoing mail and the realtime payload
	SiteName  string
	SiteURL   string
	StaticURL string
	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis for the notifications channel and list caches
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// SMTP for best-effort notification mail; empty host or from disables email
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      bool
	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	GinMode       string
	GinPath       string
	// Attachment storage root
	MediaRoot string
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// SetForTesting replaces the cached configuration. Test helper only.
func SetForTesting(c AppConfig) {
	cfg = c
	loaded = true
}

// loadJSONConfig reads the grouped JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	section := func(key string, dst any) {
		if b, ok := raw[key]; ok {
			_ = json.Unmarshal(b, dst)
		}
	}

	section("app", &struct {
		AppPort            *string
		JWTSecret          *string
		RateLimitPerMinute *int
		AllowedOrigins     *[]string
		SiteName           *string
		SiteURL            *string
		StaticURL          *string
		MediaRoot          *string
	}{&out.AppPort, &out.JWTSecret, &out.RateLimitPerMinute, &out.AllowedOrigins,
		&out.SiteName, &out.SiteURL, &out.StaticURL, &out.MediaRoot})

	section("database", &struct {
		DatabaseURI *string
		DBHost      *string
		DBPort      *string
		DBUser      *string
		DBPassword  *string
		DBName      *string
	}{&out.DatabaseURI, &out.DBHost, &out.DBPort, &out.DBUser, &out.DBPassword, &out.DBName})

	section("redis", &struct {
		RedisHost     *string
		RedisPort     *int
		RedisDB       *int
		RedisPassword *string
	}{&out.RedisHost, &out.RedisPort, &out.RedisDB, &out.RedisPassword})

	section("smtp", &struct {
		SMTPHost     *string
		SMTPPort     *int
		SMTPUsername *string
		SMTPPassword *string
		SMTPFrom     *string
		SMTPFromName *string
		SMTPTLS      *bool
	}{&out.SMTPHost, &out.SMTPPort, &out.SMTPUsername, &out.SMTPPassword,
		&out.SMTPFrom, &out.SMTPFromName, &out.SMTPTLS})

	section("log", &struct {
		Level      *string
		Path       *string
		MaxSizeMB  *int
		MaxBackups *int
		MaxAgeDays *int
		Compress   *bool
		GinMode    *string
		GinPath    *string
	}{&out.LogLevel, &out.LogPath, &out.LogMaxSizeMB, &out.LogMaxBackups,
		&out.LogMaxAgeDays, &out.LogCompress, &out.GinMode, &out.GinPath})

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.SiteName == "" {
		c.SiteName = "Agora"
	}
	if c.SiteURL == "" {
		c.SiteURL = "http://localhost:8080"
	}
	if c.StaticURL == "" {
		c.StaticURL = "/static/"
	}
	if c.MediaRoot == "" {
		c.MediaRoot = "media"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "agora"
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			*dst = mustParseInt(v)
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "true"
		}
	}

	setString("APP_PORT", &c.AppPort)
	setString("JWT_SECRET", &c.JWTSecret)
	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	setString("SITE_NAME", &c.SiteName)
	setString("SITE_URL", &c.SiteURL)
	setString("STATIC_URL", &c.StaticURL)
	setString("MEDIA_ROOT", &c.MediaRoot)

	setString("DATABASE_URI", &c.DatabaseURI)
	setString("DB_HOST", &c.DBHost)
	setString("DB_PORT", &c.DBPort)
	setString("DB_USER", &c.DBUser)
	setString("DB_PASSWORD", &c.DBPassword)
	setString("DB_NAME", &c.DBName)

	setString("REDIS_HOST", &c.RedisHost)
	setInt("REDIS_PORT", &c.RedisPort)
	setInt("REDIS_DB", &c.RedisDB)
	setString("REDIS_PASSWORD", &c.RedisPassword)

	setString("SMTP_HOST", &c.SMTPHost)
	setInt("SMTP_PORT", &c.SMTPPort)
	setString("SMTP_USERNAME", &c.SMTPUsername)
	setString("SMTP_PASSWORD", &c.SMTPPassword)
	setString("SMTP_FROM", &c.SMTPFrom)
	setString("SMTP_FROM_NAME", &c.SMTPFromName)
	setBool("SMTP_TLS", &c.SMTPTLS)

	setString("LOG_LEVEL", &c.LogLevel)
	setString("LOG_PATH", &c.LogPath)
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	setBool("LOG_COMPRESS", &c.LogCompress)
	setString("GIN_MODE", &c.GinMode)
	setString("GIN_PATH", &c.GinPath)
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
