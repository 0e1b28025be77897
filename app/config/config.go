package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration

	RemoteURL             string
	RemoteKey             string
	RemoteBreakerFailures uint32
	RemoteBreakerCooldown time.Duration

	LocalDataDir  string
	LocalRedisURL string

	MirrorToLocal        bool
	SeedDefaultProducts  bool
	StrictPaymentMethods bool
}

// Load reads an optional .env file and then the process environment.
// Values that are present but malformed are reported as errors.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		RemoteURL:     os.Getenv("REMOTE_DB_URL"),
		RemoteKey:     os.Getenv("REMOTE_DB_KEY"),
		LocalDataDir:  getEnv("LOCAL_DATA_DIR", "./data"),
		LocalRedisURL: os.Getenv("LOCAL_REDIS_URL"),
	}

	var err error
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RemoteBreakerCooldown, err = getDuration("REMOTE_BREAKER_COOLDOWN", 30*time.Second); err != nil {
		return nil, err
	}
	failures, err := getUint("REMOTE_BREAKER_FAILURES", 5)
	if err != nil {
		return nil, err
	}
	cfg.RemoteBreakerFailures = uint32(failures)

	if cfg.MirrorToLocal, err = getBool("MIRROR_TO_LOCAL", false); err != nil {
		return nil, err
	}
	if cfg.SeedDefaultProducts, err = getBool("SEED_DEFAULT_PRODUCTS", true); err != nil {
		return nil, err
	}
	if cfg.StrictPaymentMethods, err = getBool("STRICT_PAYMENT_METHODS", false); err != nil {
		return nil, err
	}

	if (cfg.RemoteURL == "") != (cfg.RemoteKey == "") {
		log.Println("[config] WARN: remote database needs both REMOTE_DB_URL and REMOTE_DB_KEY, using local storage")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a non-negative duration", key, value)
	}
	return d, nil
}

func getUint(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}
