// Package config reads process settings from flags, falling back to
// environment variables (optionally loaded from a .env file).
//
// Every flag has an environment twin, and flags win:
//
//	PORT                  -port
//	STORE                 -store       postgres, redis or memory
//	POSTGRES_HOST         -db-host
//	POSTGRES_PORT         -db-port
//	POSTGRES_USER         -db-user
//	POSTGRES_PASSWORD     -db-pass
//	POSTGRES_DB           -db-name
//	REDIS_URL             -redis-url
//	KAFKA_BROKERS         -kafka-brokers   comma separated, empty disables events
//	KAFKA_TOPIC           -kafka-topic
//	ADMIN_KEY_SALT        -admin-salt      required by the server
//	IDENTITY_SALT         -identity-salt
//	PUBLIC_ORIGIN         -public-origin
//	CORS_ALLOWED_ORIGINS  -cors-origins    comma separated
//	EMBED_VOTE_POLICY     -embed-policy    disabled, credentialed or open
//	VOTE_MAX_ATTEMPTS     -vote-attempts
//	BRAND_NAME            -brand
//	TRUST_PROXY_HEADERS   -trust-proxy     true only behind a rewriting proxy
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vncsmyrnk/enquesta/internal/adapters/events"
	"github.com/vncsmyrnk/enquesta/internal/core/services"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	Port  int
	Store string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisURL string

	KafkaBrokers []string
	KafkaTopic   string

	AdminKeySalt string
	IdentitySalt string

	PublicOrigin       string
	CORSAllowedOrigins []string
	EmbedPolicy        services.EmbedPolicy
	VoteMaxAttempts    int
	BrandName          string
	TrustProxyHeaders  bool

	// Args holds the positional arguments left after the flags.
	Args []string
}

// Load parses args for the named command.
func Load(name string, args []string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	var (
		cfg          Config
		kafkaBrokers string
		corsOrigins  string
		embedPolicy  string
	)

	port, err := envInt("PORT", 8080)
	if err != nil {
		return Config{}, err
	}
	attempts, err := envInt("VOTE_MAX_ATTEMPTS", services.DefaultVoteMaxAttempts)
	if err != nil {
		return Config{}, err
	}

	trustProxy, err := envBool("TRUST_PROXY_HEADERS", false)
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", port, "Server port")
	fs.StringVar(&cfg.Store, "store", envOr("STORE", StorePostgres), "Poll store (postgres, redis or memory)")

	fs.StringVar(&cfg.DBHost, "db-host", os.Getenv("POSTGRES_HOST"), "Database host")
	fs.StringVar(&cfg.DBPort, "db-port", envOr("POSTGRES_PORT", "5432"), "Database port")
	fs.StringVar(&cfg.DBUser, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	fs.StringVar(&cfg.DBPass, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	fs.StringVar(&cfg.DBName, "db-name", os.Getenv("POSTGRES_DB"), "Database name")

	fs.StringVar(&cfg.RedisURL, "redis-url", envOr("REDIS_URL", "redis://localhost:6379/0"), "Redis URL")

	fs.StringVar(&kafkaBrokers, "kafka-brokers", os.Getenv("KAFKA_BROKERS"), "Kafka brokers, comma separated")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", envOr("KAFKA_TOPIC", events.DefaultTopic), "Kafka topic for vote events")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", os.Getenv("ADMIN_KEY_SALT"), "Admin key salt (prefer env)")
	fs.StringVar(&cfg.IdentitySalt, "identity-salt", os.Getenv("IDENTITY_SALT"), "Voter identity salt (prefer env)")

	fs.StringVar(&cfg.PublicOrigin, "public-origin", envOr("PUBLIC_ORIGIN", "http://localhost:5173"), "Origin voters open links on")
	fs.StringVar(&corsOrigins, "cors-origins", envOr("CORS_ALLOWED_ORIGINS", "*"), "Allowed CORS origins, comma separated")
	fs.StringVar(&embedPolicy, "embed-policy", os.Getenv("EMBED_VOTE_POLICY"), "Embed vote policy (disabled, credentialed or open)")
	fs.IntVar(&cfg.VoteMaxAttempts, "vote-attempts", attempts, "Attempts per vote when writes conflict")
	fs.StringVar(&cfg.BrandName, "brand", envOr("BRAND_NAME", "Enquesta.cat"), "Brand printed on vote code sheets")

	fs.BoolVar(&cfg.TrustProxyHeaders, "trust-proxy", trustProxy, "Take client addresses from X-Forwarded-For / X-Real-IP")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Args = fs.Args()
	cfg.KafkaBrokers = splitList(kafkaBrokers)
	cfg.CORSAllowedOrigins = splitList(corsOrigins)

	cfg.EmbedPolicy, err = services.ParseEmbedPolicy(embedPolicy)
	if err != nil {
		return Config{}, err
	}

	switch cfg.Store {
	case StorePostgres, StoreRedis, StoreMemory:
	default:
		return Config{}, fmt.Errorf("unknown store %q", cfg.Store)
	}

	if cfg.VoteMaxAttempts < 1 {
		return Config{}, errors.New("vote attempts must be at least 1")
	}

	return cfg, nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c Config) ValidateServer() error {
	if c.AdminKeySalt == "" {
		return errors.New("ADMIN_KEY_SALT required")
	}
	return nil
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
