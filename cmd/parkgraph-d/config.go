package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAddr          = "127.0.0.1:8085"
	defaultDebounce      = 500 * time.Millisecond
	defaultCacheSize     = 1024
	defaultWebAssetsMode = "embedded"
)

type Config struct {
	Addr      string
	DataPath  string // permissions CSV; empty disables the CSV source
	Watch     bool
	Debounce  time.Duration
	CacheSize int

	SQLitePath    string
	SQLiteTable   string
	PostgresDSN   string
	PostgresTable string
	RedisAddr     string
	RedisPrefix   string

	ExportDir   string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool

	TLSCert string
	TLSKey  string

	WebAssetsMode string
	WebDir        string
}

// fileConfig mirrors the optional YAML config file. Every field is optional;
// anything set here sits below env vars and flags in precedence.
type fileConfig struct {
	Addr      string `yaml:"addr"`
	Data      string `yaml:"data"`
	Watch     *bool  `yaml:"watch"`
	Debounce  string `yaml:"debounce"`
	CacheSize *int   `yaml:"cache_size"`
	SQLite    struct {
		Path  string `yaml:"path"`
		Table string `yaml:"table"`
	} `yaml:"sqlite"`
	Postgres struct {
		DSN   string `yaml:"dsn"`
		Table string `yaml:"table"`
	} `yaml:"postgres"`
	Redis struct {
		Addr   string `yaml:"addr"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`
	Export struct {
		Dir string `yaml:"dir"`
		S3  struct {
			Endpoint  string `yaml:"endpoint"`
			Region    string `yaml:"region"`
			Bucket    string `yaml:"bucket"`
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
			UseSSL    *bool  `yaml:"use_ssl"`
		} `yaml:"s3"`
	} `yaml:"export"`
	TLS struct {
		Cert string `yaml:"cert"`
		Key  string `yaml:"key"`
	} `yaml:"tls"`
	Web struct {
		Assets string `yaml:"assets"`
		Dir    string `yaml:"dir"`
	} `yaml:"web"`
}

// LoadConfig resolves settings with precedence flags > env > config file >
// defaults. The config file path itself comes from -config or PARKGRAPH_CONFIG.
func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	file, err := loadFileConfig(configFileFromArgs(args), cwd)
	if err != nil {
		return Config{}, err
	}

	addr := addrFromEnv(firstNonEmpty(file.Addr, defaultAddr))
	dataPath := envOrDefault("PARKGRAPH_DATA", file.Data)

	watch := true
	if file.Watch != nil {
		watch = *file.Watch
	}
	if watchEnv := os.Getenv("PARKGRAPH_WATCH"); watchEnv != "" {
		parsed, err := strconv.ParseBool(watchEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARKGRAPH_WATCH: %w", err)
		}
		watch = parsed
	}

	debounce := defaultDebounce
	if file.Debounce != "" {
		parsed, err := time.ParseDuration(file.Debounce)
		if err != nil {
			return Config{}, fmt.Errorf("invalid debounce in config file: %w", err)
		}
		debounce = parsed
	}
	if debounceEnv := os.Getenv("PARKGRAPH_DEBOUNCE"); debounceEnv != "" {
		parsed, err := time.ParseDuration(debounceEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARKGRAPH_DEBOUNCE: %w", err)
		}
		debounce = parsed
	}

	cacheSize := defaultCacheSize
	if file.CacheSize != nil {
		cacheSize = *file.CacheSize
	}
	if cacheEnv := os.Getenv("PARKGRAPH_CACHE_SIZE"); cacheEnv != "" {
		parsed, err := strconv.Atoi(cacheEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARKGRAPH_CACHE_SIZE: %w", err)
		}
		cacheSize = parsed
	}

	sqlitePath := envOrDefault("PARKGRAPH_SQLITE_PATH", file.SQLite.Path)
	sqliteTable := envOrDefault("PARKGRAPH_SQLITE_TABLE", file.SQLite.Table)
	postgresDSN := envOrDefault("PARKGRAPH_POSTGRES_DSN", file.Postgres.DSN)
	postgresTable := envOrDefault("PARKGRAPH_POSTGRES_TABLE", file.Postgres.Table)
	redisAddr := envOrDefault("PARKGRAPH_REDIS_ADDR", file.Redis.Addr)
	redisPrefix := envOrDefault("PARKGRAPH_REDIS_PREFIX", file.Redis.Prefix)

	exportDir := envOrDefault("PARKGRAPH_EXPORT_DIR", file.Export.Dir)
	s3Endpoint := envOrDefault("PARKGRAPH_S3_ENDPOINT", file.Export.S3.Endpoint)
	s3Region := envOrDefault("PARKGRAPH_S3_REGION", file.Export.S3.Region)
	s3Bucket := envOrDefault("PARKGRAPH_S3_BUCKET", file.Export.S3.Bucket)
	s3AccessKey := envOrDefault("PARKGRAPH_S3_ACCESS_KEY", file.Export.S3.AccessKey)
	s3SecretKey := envOrDefault("PARKGRAPH_S3_SECRET_KEY", file.Export.S3.SecretKey)

	s3UseSSL := false
	if file.Export.S3.UseSSL != nil {
		s3UseSSL = *file.Export.S3.UseSSL
	}
	if sslEnv := os.Getenv("PARKGRAPH_S3_USE_SSL"); sslEnv != "" {
		parsed, err := strconv.ParseBool(sslEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARKGRAPH_S3_USE_SSL: %w", err)
		}
		s3UseSSL = parsed
	}

	tlsCert := envOrDefault("PARKGRAPH_TLS_CERT", file.TLS.Cert)
	tlsKey := envOrDefault("PARKGRAPH_TLS_KEY", file.TLS.Key)

	webAssetsMode := envOrDefault("PARKGRAPH_WEB_ASSETS_MODE", firstNonEmpty(file.Web.Assets, defaultWebAssetsMode))
	webDir := envOrDefault("PARKGRAPH_WEB_DIR", file.Web.Dir)

	flagSet := flag.NewFlagSet("parkgraph-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.String("config", "", "path to YAML config file")
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagData := flagSet.String("data", dataPath, "path to permissions CSV")
	flagWatch := flagSet.Bool("watch", watch, "reload when the CSV changes")
	flagDebounce := flagSet.String("debounce", debounce.String(), "watcher debounce window")
	flagCache := flagSet.Int("cache-size", cacheSize, "query result cache entries (0 disables)")
	flagSQLite := flagSet.String("sqlite", sqlitePath, "path to SQLite permissions database")
	flagSQLiteTable := flagSet.String("sqlite-table", sqliteTable, "SQLite permissions table")
	flagPostgres := flagSet.String("postgres", postgresDSN, "Postgres DSN for permissions")
	flagPostgresTable := flagSet.String("postgres-table", postgresTable, "Postgres permissions table")
	flagRedis := flagSet.String("redis", redisAddr, "Redis address for permissions keys")
	flagRedisPrefix := flagSet.String("redis-prefix", redisPrefix, "Redis key prefix")
	flagExportDir := flagSet.String("export-dir", exportDir, "directory for exported artifacts")
	flagTLSCert := flagSet.String("tls-cert", tlsCert, "TLS certificate file")
	flagTLSKey := flagSet.String("tls-key", tlsKey, "TLS key file")
	flagWebAssets := flagSet.String("web-assets", webAssetsMode, "web assets mode: embedded|fs|off")
	flagWebDir := flagSet.String("web-dir", webDir, "web assets directory when web-assets=fs")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	debounceParsed, err := time.ParseDuration(*flagDebounce)
	if err != nil {
		return Config{}, fmt.Errorf("invalid debounce: %w", err)
	}
	if debounceParsed <= 0 {
		return Config{}, errors.New("debounce must be positive")
	}
	if *flagCache < 0 {
		return Config{}, errors.New("cache-size cannot be negative")
	}

	config := Config{
		Addr:          strings.TrimSpace(*flagAddr),
		DataPath:      resolvePath(*flagData, cwd),
		Watch:         *flagWatch,
		Debounce:      debounceParsed,
		CacheSize:     *flagCache,
		SQLitePath:    resolvePath(*flagSQLite, cwd),
		SQLiteTable:   strings.TrimSpace(*flagSQLiteTable),
		PostgresDSN:   strings.TrimSpace(*flagPostgres),
		PostgresTable: strings.TrimSpace(*flagPostgresTable),
		RedisAddr:     strings.TrimSpace(*flagRedis),
		RedisPrefix:   strings.TrimSpace(*flagRedisPrefix),
		ExportDir:     resolvePath(*flagExportDir, cwd),
		S3Endpoint:    s3Endpoint,
		S3Region:      s3Region,
		S3Bucket:      s3Bucket,
		S3AccessKey:   s3AccessKey,
		S3SecretKey:   s3SecretKey,
		S3UseSSL:      s3UseSSL,
		TLSCert:       resolvePath(*flagTLSCert, cwd),
		TLSKey:        resolvePath(*flagTLSKey, cwd),
		WebAssetsMode: normalizeWebAssetsMode(*flagWebAssets),
		WebDir:        strings.TrimSpace(*flagWebDir),
	}

	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}

	if config.WebAssetsMode == "fs" {
		if config.WebDir == "" {
			return Config{}, errors.New("web-assets=fs requires web-dir")
		}
		config.WebDir = resolvePath(config.WebDir, cwd)
	}

	if config.WebAssetsMode != "embedded" && config.WebAssetsMode != "fs" && config.WebAssetsMode != "off" {
		return Config{}, fmt.Errorf("unsupported web-assets mode: %s", config.WebAssetsMode)
	}

	if (config.TLSCert == "") != (config.TLSKey == "") {
		return Config{}, errors.New("tls-cert and tls-key must be set together")
	}

	return config, nil
}

// configFileFromArgs pre-scans for -config so the file can seed flag defaults
// before the flag set parses.
func configFileFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-config" || arg == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "-config="):
			return strings.TrimPrefix(arg, "-config=")
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return os.Getenv("PARKGRAPH_CONFIG")
}

func loadFileConfig(path, cwd string) (fileConfig, error) {
	var file fileConfig
	if strings.TrimSpace(path) == "" {
		return file, nil
	}
	resolved := resolvePath(path, cwd)
	data, err := os.ReadFile(resolved)
	if err != nil {
		return file, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("failed to parse config file: %w", err)
	}
	return file, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func addrFromEnv(fallback string) string {
	if value := os.Getenv("PARKGRAPH_ADDR"); value != "" {
		return value
	}
	if port := os.Getenv("PARKGRAPH_PORT"); port != "" {
		return fmt.Sprintf("127.0.0.1:%s", port)
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}

func normalizeWebAssetsMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "embedded":
		return "embedded"
	case "fs", "dir", "directory":
		return "fs"
	case "off", "disabled", "none":
		return "off"
	default:
		return strings.ToLower(strings.TrimSpace(mode))
	}
}
