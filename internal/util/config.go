package util

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

//nolint:gochecknoglobals // here its ok
var once sync.Once

func init() {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	})
}

const (
	defaultServerAddr      = "localhost:8080"
	defaultWriteTimeout    = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultGracefulTimeout = 5 * time.Second

	defaultAccessTTL = 24 * time.Hour

	defaultLoginMaxAttempts = 5
	defaultLoginWindow      = time.Minute

	defaultUpstreamTimeout = 10 * time.Second

	defaultTwelveDataBaseURL = "https://api.twelvedata.com"
	defaultYahooBaseURL      = "https://query1.finance.yahoo.com"
	defaultFinnhubBaseURL    = "https://finnhub.io/api/v1"
)

type ServerConfig struct {
	ServerAddr      string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

func NewServerConfig() *ServerConfig {
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = defaultServerAddr
	}

	return &ServerConfig{
		ServerAddr:      addr,
		WriteTimeout:    parseDurationOrDefault("WRITE_TIMEOUT", defaultWriteTimeout),
		ReadTimeout:     parseDurationOrDefault("READ_TIMEOUT", defaultReadTimeout),
		IdleTimeout:     parseDurationOrDefault("IDLE_TIMEOUT", defaultIdleTimeout),
		GracefulTimeout: parseDurationOrDefault("GRACEFUL_TIMEOUT", defaultGracefulTimeout),
	}
}

type TokenConfig struct {
	JwtSecretKey []byte
	AccessTTL    time.Duration
}

func NewTokenConfig() *TokenConfig {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	return &TokenConfig{
		JwtSecretKey: []byte(secret),
		AccessTTL:    parseDurationOrDefault("ACCESS_TOKEN_TTL", defaultAccessTTL),
	}
}

// AuthConfig carries the single configured credential pair and the
// login rate-limit parameters.
type AuthConfig struct {
	Username      string
	Salt          string
	PasswordHash  string
	MaxAttempts   int
	AttemptWindow time.Duration
}

func NewAuthConfig() *AuthConfig {
	username := os.Getenv("AUTH_USERNAME")
	if username == "" {
		log.Fatal("AUTH_USERNAME is not set")
	}
	salt := os.Getenv("AUTH_SALT")
	hash := os.Getenv("AUTH_PASSWORD_HASH")
	if salt == "" || hash == "" {
		log.Fatal("AUTH_SALT / AUTH_PASSWORD_HASH are not set (generate with cmd/hashpass)")
	}

	return &AuthConfig{
		Username:      strings.ToLower(strings.TrimSpace(username)),
		Salt:          salt,
		PasswordHash:  hash,
		MaxAttempts:   parseIntOrDefault("LOGIN_MAX_ATTEMPTS", defaultLoginMaxAttempts),
		AttemptWindow: parseDurationOrDefault("LOGIN_ATTEMPT_WINDOW", defaultLoginWindow),
	}
}

// TTLPair is a fresh/stale cache window for one endpoint category in
// one market-session state.
type TTLPair struct {
	Fresh time.Duration
	Stale time.Duration
}

type CachePolicyConfig struct {
	QuoteOpen        TTLPair
	QuoteClosed      TTLPair
	StatisticsOpen   TTLPair
	StatisticsClosed TTLPair
	TimeSeriesOpen   TTLPair
	TimeSeriesClosed TTLPair
}

func NewCachePolicyConfig() *CachePolicyConfig {
	return &CachePolicyConfig{
		QuoteOpen:        parseTTLPairOrDefault("CACHE_TTL_QUOTE_OPEN", TTLPair{60 * time.Second, 120 * time.Second}),
		QuoteClosed:      parseTTLPairOrDefault("CACHE_TTL_QUOTE_CLOSED", TTLPair{time.Hour, 2 * time.Hour}),
		StatisticsOpen:   parseTTLPairOrDefault("CACHE_TTL_STATISTICS_OPEN", TTLPair{time.Hour, 2 * time.Hour}),
		StatisticsClosed: parseTTLPairOrDefault("CACHE_TTL_STATISTICS_CLOSED", TTLPair{24 * time.Hour, 48 * time.Hour}),
		TimeSeriesOpen:   parseTTLPairOrDefault("CACHE_TTL_TIME_SERIES_OPEN", TTLPair{60 * time.Second, 120 * time.Second}),
		TimeSeriesClosed: parseTTLPairOrDefault("CACHE_TTL_TIME_SERIES_CLOSED", TTLPair{time.Hour, 2 * time.Hour}),
	}
}

// ProvidersConfig describes the three upstream market-data providers.
// Yahoo is keyless; the other two authenticate with a query parameter.
type ProvidersConfig struct {
	TwelveDataBaseURL string
	TwelveDataAPIKey  string
	YahooBaseURL      string
	FinnhubBaseURL    string
	FinnhubAPIKey     string
	UpstreamTimeout   time.Duration
}

func NewProvidersConfig() *ProvidersConfig {
	cfg := &ProvidersConfig{
		TwelveDataBaseURL: envOrDefault("TWELVE_DATA_BASE_URL", defaultTwelveDataBaseURL),
		TwelveDataAPIKey:  os.Getenv("TWELVE_DATA_API_KEY"),
		YahooBaseURL:      envOrDefault("YAHOO_BASE_URL", defaultYahooBaseURL),
		FinnhubBaseURL:    envOrDefault("FINNHUB_BASE_URL", defaultFinnhubBaseURL),
		FinnhubAPIKey:     os.Getenv("FINNHUB_API_KEY"),
		UpstreamTimeout:   parseDurationOrDefault("UPSTREAM_TIMEOUT", defaultUpstreamTimeout),
	}
	if cfg.TwelveDataAPIKey == "" {
		log.Printf("Warning: TWELVE_DATA_API_KEY is not set, primary provider calls will be rejected upstream")
	}
	if cfg.FinnhubAPIKey == "" {
		log.Printf("Warning: FINNHUB_API_KEY is not set, finnhub proxy calls will be rejected upstream")
	}
	return cfg
}

type RedisConfig struct {
	Addr string
}

// NewRedisConfig reads REDIS_ADDR; an empty address means the gateway
// falls back to the in-memory edge cache.
func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr: os.Getenv("REDIS_ADDR"),
	}
}

func envOrDefault(varName, def string) string {
	if v := os.Getenv(varName); v != "" {
		return v
	}
	return def
}

func parseIntOrDefault(varName string, def int) int {
	if v := os.Getenv(varName); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Invalid integer in %s: %s, using default %d", varName, v, def)
	}
	return def
}

func parseDurationOrDefault(varName string, def time.Duration) time.Duration {
	if v := os.Getenv(varName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", varName, v, def)
	}
	return def
}

// parseTTLPairOrDefault parses "fresh,stale" duration pairs, e.g. "60s,120s".
func parseTTLPairOrDefault(varName string, def TTLPair) TTLPair {
	v := os.Getenv(varName)
	if v == "" {
		return def
	}
	parts := strings.SplitN(v, ",", 2)
	if len(parts) != 2 {
		log.Printf("Invalid TTL pair in %s: %s, using default", varName, v)
		return def
	}
	fresh, err1 := time.ParseDuration(strings.TrimSpace(parts[0]))
	stale, err2 := time.ParseDuration(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		log.Printf("Invalid TTL pair in %s: %s, using default", varName, v)
		return def
	}
	return TTLPair{Fresh: fresh, Stale: stale}
}
