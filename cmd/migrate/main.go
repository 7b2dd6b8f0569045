package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	_ "github.com/lib/pq"

	"github.com/bellringer/quiz-api/internal/config"
	"github.com/bellringer/quiz-api/pkg/database"
)

const usage = `usage: migrate [-config path] <command>

commands:
  up          применить все миграции
  down N      откатить N миграций
  force V     выставить версию V и снять dirty-флаг
  version     показать текущую версию`

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "config/config.yaml"), "путь к файлу конфигурации")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	m, err := database.NewMigrator(db, cfg.Server.MigrationsPath)
	if err != nil {
		log.Fatal(err)
	}

	if err := runCommand(m, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func runCommand(m *migrateV4.Migrate, args []string) error {
	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrateV4.ErrNoChange) {
			return fmt.Errorf("up: %w", err)
		}
	case "down":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		if err := m.Steps(-n); err != nil {
			return fmt.Errorf("down %d: %w", n, err)
		}
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		fmt.Printf("Forcing migration version to %d to clean dirty state...\n", v)
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force %d: %w", v, err)
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrateV4.ErrNilVersion) {
		fmt.Println("No migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Version: %d (dirty: %t)\n", version, dirty)
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a numeric argument", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid number %q", args[0], args[1])
	}
	return n, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
