package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/campusworks/parkgraph/pkg/api"
	"github.com/campusworks/parkgraph/pkg/export"
	"github.com/campusworks/parkgraph/pkg/ingest"
	"github.com/campusworks/parkgraph/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Printf(`{"level":"fatal","msg":"startup_failed","error":%q}`+"\n", err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	fmt.Println(`{"level":"info","msg":"system_started","component":"parkgraph-d"}`)

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	sources, err := buildSources(cfg)
	if err != nil {
		return err
	}

	loader := ingest.NewLoader(sources...)
	reloader := ingest.NewReloader(loader, cfg.CacheSize)

	summary, err := reloader.Reload(context.Background())
	if err != nil {
		return fmt.Errorf("initial load failed: %w", err)
	}
	fmt.Printf(`{"level":"info","msg":"graph_loaded","run_id":"%s","loaded":%d,"skipped":%d,"elapsed_ms":%d}`+"\n",
		summary.RunID, summary.Loaded, summary.Skipped, summary.ElapsedMS)

	server := api.NewServer(reloader, cfg.Addr)

	if cfg.TLSCert != "" && cfg.TLSKey != "" {
		server.SetTLS(cfg.TLSCert, cfg.TLSKey)
	}

	archive, err := buildArchive(cfg)
	if err != nil {
		return err
	}
	if archive != nil {
		server.SetExporter(export.NewExporter(archive))
	}

	switch cfg.WebAssetsMode {
	case "embedded":
		assets, err := web.Assets()
		if err != nil {
			return fmt.Errorf("failed to load embedded web assets: %w", err)
		}
		server.SetStaticFS(assets)
	case "fs":
		server.SetStaticFS(os.DirFS(cfg.WebDir))
	}

	go func() {
		if err := server.Start(); err != nil {
			fmt.Printf(`{"level":"fatal","msg":"api_server_failed","error":%q}`+"\n", err.Error())
			os.Exit(1)
		}
	}()

	reload := func(trigger string) {
		s, err := reloader.Reload(context.Background())
		if err != nil {
			fmt.Printf(`{"level":"error","msg":"reload_failed","trigger":"%s","error":%q}`+"\n", trigger, err.Error())
			return
		}
		fmt.Printf(`{"level":"info","msg":"graph_reloaded","trigger":"%s","run_id":"%s","loaded":%d,"skipped":%d}`+"\n",
			trigger, s.RunID, s.Loaded, s.Skipped)
	}

	var watcher *ingest.Watcher
	if cfg.Watch && cfg.DataPath != "" {
		watcher, err = ingest.NewWatcher(cfg.DataPath, cfg.Debounce, func() { reload("watcher") })
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		fmt.Printf(`{"level":"info","msg":"watcher_started","path":"%s"}`+"\n", cfg.DataPath)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigs {
		if sig == syscall.SIGHUP {
			fmt.Println(`{"level":"info","msg":"sighup_received"}`)
			reload("sighup")
			continue
		}
		fmt.Printf(`{"level":"info","msg":"shutdown_initiated","signal":"%s"}`+"\n", sig)
		break
	}

	if watcher != nil {
		watcher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		fmt.Printf(`{"level":"error","msg":"shutdown_error","error":%q}`+"\n", err.Error())
	}

	fmt.Println(`{"level":"info","msg":"shutdown_complete"}`)
	return nil
}

func buildSources(cfg Config) ([]ingest.Source, error) {
	var sources []ingest.Source
	if cfg.DataPath != "" {
		sources = append(sources, ingest.NewCSVSource(cfg.DataPath))
	}
	if cfg.SQLitePath != "" {
		src, err := ingest.NewSQLiteSource(cfg.SQLitePath, cfg.SQLiteTable)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if cfg.PostgresDSN != "" {
		src, err := ingest.NewPostgresSource(cfg.PostgresDSN, cfg.PostgresTable)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		sources = append(sources, ingest.NewRedisSource(client, cfg.RedisPrefix))
	}
	if len(sources) == 0 {
		fmt.Println(`{"level":"info","msg":"no_sources_configured","dataset":"builtin"}`)
		sources = append(sources, ingest.DefaultDataset())
	}
	return sources, nil
}

func buildArchive(cfg Config) (export.ArchiveStore, error) {
	if cfg.S3Endpoint != "" {
		return export.NewS3Store(export.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
	}
	if cfg.ExportDir != "" {
		return export.NewLocalStore(cfg.ExportDir), nil
	}
	return nil, nil
}
