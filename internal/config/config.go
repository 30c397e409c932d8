package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	StoreBackend string // "redis" | "sqlite" | "memory"
	SQLitePath   string // database file for the sqlite backend

	SettingsFile        string        // optional yaml file with default settings
	ReloadInterval      time.Duration // interval to reload the settings file (default: 1h)
	LoopInterval        time.Duration // loop monitor tick (default: 500ms)
	DeleteConfirmWindow time.Duration // window for the second delete click (default: 2s)
	VideoBaseURL        string        // resource URL prefix used by exports

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst    int      // per-IP burst on mutating routes
	RatePerMin   int      // per-IP refill on mutating routes
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("STAMP_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("STAMP_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("STAMP_LOG_LEVEL", "info"),
		PrettyLog: mustBool("STAMP_PRETTY_LOG", true),

		// Persistence
		StoreBackend: strings.ToLower(getenv("STAMP_STORE_BACKEND", BackendRedis)),
		SQLitePath:   getenv("STAMP_SQLITE_PATH", "/data/stamp.db"),

		// Session behaviour
		SettingsFile:        getenv("STAMP_SETTINGS_FILE", ""), // Optional, empty = built-in defaults
		ReloadInterval:      mustDuration("STAMP_RELOAD_INTERVAL", time.Hour),
		LoopInterval:        mustDuration("STAMP_LOOP_INTERVAL", 500*time.Millisecond),
		DeleteConfirmWindow: mustDuration("STAMP_DELETE_CONFIRM_WINDOW", 2*time.Second),
		VideoBaseURL:        getenv("STAMP_VIDEO_BASE_URL", "https://www.youtube.com/watch?v="),

		// Redis timeouts (address and credentials are read below)
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("STAMP_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("STAMP_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("STAMP_TRUST_PROXY", true),
		RateBurst:    getenvInt("STAMP_RATE_BURST", 30),
		RatePerMin:   getenvInt("STAMP_RATE_PER_MIN", 240),
	}

	switch cfg.StoreBackend {
	case BackendRedis:
		cfg.RedisAddr = requireEnv("STAMP_REDIS_ADDR")
		cfg.RedisUser = getenv("STAMP_REDIS_USERNAME", "default")
		cfg.RedisPasswordRequired = mustBool("STAMP_REDIS_PASSWORD_REQUIRED", true)
		cfg.RedisPassword = getenv("STAMP_REDIS_PASSWORD", "")
		cfg.RedisDB = getenvInt("STAMP_REDIS_DB", 0)

		// Validate Redis password configuration
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: STAMP_REDIS_PASSWORD is required when STAMP_REDIS_PASSWORD_REQUIRED=true")
		}
	case BackendSQLite, BackendMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: Unknown STAMP_STORE_BACKEND %q (want redis, sqlite or memory)", cfg.StoreBackend))
	}

	if cfg.LoopInterval <= 0 {
		panic("❌ FATAL: STAMP_LOOP_INTERVAL must be > 0")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
