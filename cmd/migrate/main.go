package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"

	_ "github.com/lib/pq"
	"github.com/printchain/backend/internal/infrastructure/config"
	"github.com/printchain/backend/internal/infrastructure/logger"
	"github.com/printchain/backend/internal/infrastructure/migration"
	"github.com/printchain/backend/migrations"
	"go.uber.org/zap"
)

func main() {
	var (
		action         string
		steps          int
		version        int
		migrationsPath string
		name           string
		description    string
		logLevel       string
	)
	flag.StringVar(&action, "action", "up", "up, down, steps, version, force, create or list")
	flag.IntVar(&steps, "steps", 0, "Number of migrations for -action steps (negative rolls back)")
	flag.IntVar(&version, "version", -1, "Version for -action force")
	flag.StringVar(&migrationsPath, "path", "", "Migrations directory (default: the schema embedded in the binary)")
	flag.StringVar(&name, "name", "", "Migration name for -action create")
	flag.StringVar(&description, "description", "", "Migration description for -action create")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	log, err := logger.New(config.LogConfig{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Migration CLI started", zap.String("action", action), zap.String("path", migrationsPath))

	switch action {
	case "create":
		dir := migrationsPath
		if dir == "" {
			dir = "migrations"
		}
		if name == "" {
			log.Fatal("Migration name required: migrate -action create -name <name>")
		}
		mf, err := migration.CreateMigration(dir, name, description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return

	case "list":
		var fsys fs.FS = migrations.FS
		if migrationsPath != "" {
			fsys = os.DirFS(migrationsPath)
		}
		names, err := migration.ListMigrations(fsys)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		for _, n := range names {
			fmt.Println("  -", n)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver == "sqlite" {
		log.Fatal("SQL migrations target postgres; sqlite databases are created by the server with auto-migrate")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch action {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if steps == 0 {
			log.Fatal("Step count required: migrate -action steps -steps <n>")
		}
		err = m.Steps(steps)
	case "version":
		v, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal("Failed to read version", zap.Error(verr))
		}
		if v == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		}
	case "force":
		if version < 0 {
			log.Fatal("Version required: migrate -action force -version <n>")
		}
		err = m.Force(version)
	default:
		log.Error("Unknown action", zap.String("action", action))
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("Migration failed", zap.String("action", action), zap.Error(err))
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `printchain database migration tool

Usage:
  migrate -action <action> [flags]

Actions:
  up                Apply all pending migrations
  down              Roll back all migrations
  steps -steps n    Apply n migrations (negative rolls back)
  version           Show the current migration version
  force -version n  Set the version without running migrations
  create -name x    Write a new migration file pair
  list              List available migrations

Flags:`)
	flag.PrintDefaults()
}
