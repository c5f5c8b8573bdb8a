package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/5w1tchy/locallibrary/internal/models"
	"github.com/joho/godotenv"
)

// Names that handlers and guards are built with.
const (
	PermCanMarkReturned = "catalog.can_mark_returned"
	DefaultLoginURL     = "/user/accounts/login"
	BookListAuxData     = "This is just some data"
)

type Config struct {
	Port     string
	CertFile string
	KeyFile  string
	AppEnv   string

	DatabaseURL string
	DBMaxOpen   int

	RedisURL      string
	RedisAddr     string
	RedisUser     string
	RedisPassword string

	SessionCookie string
	SessionTTL    time.Duration
	SecureCookies bool

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ClockSkew  time.Duration

	LoginURL       string
	RenewPerm      string
	AuthorEditPerm string

	BooksPageSize   int
	AuthorsPageSize int
	LoansPageSize   int

	RenewalDefault   time.Duration
	RenewalMaxAhead  time.Duration
	DeathPlaceholder time.Time
	DeletePolicy     models.DeletePolicy

	IndexStatsTTL time.Duration

	ViewQueueBuffer  int
	ViewQueueWorkers int
	ViewRetention    time.Duration
	RetentionAt      string
	RetentionTZ      string
}

// Load reads .env (if present) and the process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	placeholder, err := time.Parse(time.DateOnly, envStr("AUTHOR_DEATH_PLACEHOLDER", "2023-11-11"))
	if err != nil {
		return Config{}, fmt.Errorf("AUTHOR_DEATH_PLACEHOLDER: %w", err)
	}
	policy, err := models.ParseDeletePolicy(envStr("AUTHOR_DELETE_POLICY", string(models.DeleteProtect)))
	if err != nil {
		return Config{}, fmt.Errorf("AUTHOR_DELETE_POLICY: %w", err)
	}

	c := Config{
		Port:     ":" + envStr("PORT", "3000"),
		CertFile: os.Getenv("TLS_CERT"),
		KeyFile:  os.Getenv("TLS_KEY"),
		AppEnv:   envStr("APP_ENV", "development"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxOpen:   envInt("DB_MAX_OPEN_CONNS", 10),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisUser:     os.Getenv("REDIS_USER"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		SessionCookie: envStr("SESSION_COOKIE", "sessionid"),
		SessionTTL:    envDur("SESSION_TTL", 14*24*time.Hour),

		JWTSecret:  os.Getenv("AUTH_JWT_SECRET"),
		AccessTTL:  envDur("AUTH_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: envDur("AUTH_REFRESH_TTL", 30*24*time.Hour),
		ClockSkew:  envDur("AUTH_CLOCK_SKEW", 60*time.Second),

		LoginURL:       envStr("LOGIN_URL", DefaultLoginURL),
		RenewPerm:      PermCanMarkReturned,
		AuthorEditPerm: PermCanMarkReturned,

		BooksPageSize:   envInt("BOOKS_PAGE_SIZE", 10),
		AuthorsPageSize: envInt("AUTHORS_PAGE_SIZE", 10),
		LoansPageSize:   envInt("LOANS_PAGE_SIZE", 10),

		RenewalDefault:   time.Duration(envInt("RENEWAL_DEFAULT_WEEKS", 3)) * 7 * 24 * time.Hour,
		RenewalMaxAhead:  time.Duration(envInt("RENEWAL_MAX_WEEKS", 4)) * 7 * 24 * time.Hour,
		DeathPlaceholder: placeholder,
		DeletePolicy:     policy,

		IndexStatsTTL: envDur("INDEX_STATS_CACHE_TTL", 30*time.Second),

		ViewQueueBuffer:  envInt("VIEW_QUEUE_BUFFER", 10000),
		ViewQueueWorkers: envInt("VIEW_QUEUE_WORKERS", 2),
		ViewRetention:    time.Duration(envInt("VIEW_EVENTS_RETENTION_DAYS", 90)) * 24 * time.Hour,
		RetentionAt:      envStr("RETENTION_AT", "03:00"),
		RetentionTZ:      envStr("RETENTION_TZ", "UTC"),
	}

	c.SecureCookies = c.AppEnv == "production" || c.CertFile != ""

	if c.BooksPageSize < 1 || c.AuthorsPageSize < 1 || c.LoansPageSize < 1 {
		return Config{}, fmt.Errorf("page sizes must be >= 1")
	}
	if c.RenewalDefault > c.RenewalMaxAhead {
		return Config{}, fmt.Errorf("RENEWAL_DEFAULT_WEEKS must not exceed RENEWAL_MAX_WEEKS")
	}
	return c, nil
}

func envStr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return def
}
