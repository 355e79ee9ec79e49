package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultSnapshotDir = "neo_csharp/core/src/Neo/SmartContract"
	DefaultRawBaseURL  = "https://raw.githubusercontent.com/neo-project/neo/master/src/Neo/SmartContract/"
	DefaultAPIBaseURL  = "https://api.github.com/repos/neo-project/neo/contents/src/Neo/SmartContract/"
)

type Config struct {
	SnapshotDir string
	// SnapshotIgnore names snapshot directories left out of listings.
	SnapshotIgnore []string
	Fetch       FetchConfig
	Cache       CacheConfig
	Mirror      MirrorConfig
	Output      OutputConfig
	Log         LogConfig
}

type FetchConfig struct {
	RawBaseURL string
	APIBaseURL string
	Ref        string
	Token      string
	Attempts   int
	Backoff    time.Duration
	Timeout    time.Duration
}

type CacheConfig struct {
	// Dir enables the on-disk source cache when set.
	Dir string
	TTL time.Duration
}

type MirrorConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
	// Publish uploads generated artifacts to the mirror bucket.
	Publish bool
}

type OutputConfig struct {
	OutDir  string
	DataDir string
	Lang    string
	Package string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads an optional .env file and NEOTABLES_* variables. Unset or
// malformed values fall back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		SnapshotDir:    firstNonEmpty(env("SNAPSHOT_DIR"), DefaultSnapshotDir),
		SnapshotIgnore: envList("SNAPSHOT_IGNORE"),
		Fetch: FetchConfig{
			RawBaseURL: firstNonEmpty(env("RAW_BASE_URL"), DefaultRawBaseURL),
			APIBaseURL: firstNonEmpty(env("API_BASE_URL"), DefaultAPIBaseURL),
			Ref:        firstNonEmpty(env("REF"), "master"),
			Token:      firstNonEmpty(env("GITHUB_TOKEN"), strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))),
			Attempts:   envInt("FETCH_ATTEMPTS", 3),
			Backoff:    envDuration("FETCH_BACKOFF", 300*time.Millisecond),
			Timeout:    envDuration("FETCH_TIMEOUT", 30*time.Second),
		},
		Cache: CacheConfig{
			Dir: env("CACHE_DIR"),
			TTL: envDuration("CACHE_TTL", 24*time.Hour),
		},
		Mirror: loadMirrorConfig(),
		Output: OutputConfig{
			OutDir:  firstNonEmpty(env("OUT_DIR"), "src"),
			DataDir: firstNonEmpty(env("DATA_DIR"), "tools/data"),
			Lang:    firstNonEmpty(env("LANG"), "go"),
			Package: firstNonEmpty(env("PACKAGE"), "neotables"),
		},
		Log: LogConfig{
			Level:  firstNonEmpty(env("LOG_LEVEL"), "info"),
			Format: firstNonEmpty(env("LOG_FORMAT"), "console"),
		},
	}
}

func loadMirrorConfig() MirrorConfig {
	endpoint := env("MIRROR_ENDPOINT")
	return MirrorConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(env("MIRROR_REGION"), "us-east-1"),
		AccessKey: firstNonEmpty(env("MIRROR_ACCESS_KEY"), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(env("MIRROR_SECRET_KEY"), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(env("MIRROR_BUCKET"), "neotables"),
		Prefix:    env("MIRROR_PREFIX"),
		UseSSL:    envBool("MIRROR_USE_SSL", true),
		Publish:   envBool("PUBLISH", false),
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv("NEOTABLES_" + key))
}

// envList splits a comma-separated variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(env(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(env(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(env(key))
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(env(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
