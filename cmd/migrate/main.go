package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

func main() {
	var (
		dir      string
		logLevel string
	)
	flag.StringVar(&dir, "dir", "", "read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	command := args[0]

	log, err := logger.New(logger.Config{Level: logLevel, Format: "console", Output: "stderr", Service: "storefront-migrate"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	switch command {
	case "create":
		if dir == "" {
			log.Fatal("create needs -dir pointing at the source migrations directory")
		}
		if len(args) < 2 {
			log.Fatal("usage: migrate -dir <dir> create <name>")
		}
		mf, err := migration.CreateMigration(dir, args[1])
		if err != nil {
			log.Fatal("create migration failed", zap.Error(err))
		}
		log.Info("migration created",
			zap.Uint("version", mf.Version),
			zap.String("up", mf.UpPath),
			zap.String("down", mf.DownPath),
		)
		return

	case "list":
		var entries []migration.Entry
		if dir == "" {
			entries, err = migration.Embedded()
		} else {
			entries, err = migration.ListMigrations(dir)
		}
		if err != nil {
			log.Fatal("list migrations failed", zap.Error(err))
		}
		for _, e := range entries {
			fmt.Printf("%06d  %s\n", e.Version, e.Name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config failed", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("open database failed", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("ping database failed", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	var m *migration.Migrator
	if dir == "" {
		m, err = migration.New(db, log)
	} else {
		m, err = migration.NewFromDir(db, dir, log)
	}
	if err != nil {
		log.Fatal("create migrator failed", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, command, args[1:], log); err != nil {
		log.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}
}

func run(m *migration.Migrator, command string, args []string, log *zap.Logger) error {
	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(v)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing numeric argument")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `storefront schema migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up             apply all pending migrations
  down           roll back every migration
  step <n>       apply n migrations (negative rolls back)
  version        print the applied version
  force <v>      mark version v as applied without running it
  create <name>  write a new numbered up/down pair (requires -dir)
  list           list migrations

Flags:
  -dir string        migrations directory (default: embedded set)
  -log-level string  debug, info, warn or error

Connection settings come from config.toml and STORE_DATABASE_* variables.`)
}
