package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/storage/mysql"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/storage/postgres"
)

const defaultTimeout = 30 * time.Second

type options struct {
	command string
	driver  string
	dsn     string
	steps   int
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Getenv); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseOptions(args []string, getenv func(string) string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.command, "command", "up", "migration command: up|down|status")
	fs.StringVar(&opts.driver, "driver", "postgres", "storage driver: postgres|mysql")
	fs.IntVar(&opts.steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	fs.StringVar(&opts.dsn, "dsn", "", "database DSN (fallback: OMS_POSTGRES_DSN or OMS_MYSQL_DSN)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.command = strings.ToLower(strings.TrimSpace(opts.command))
	opts.driver = strings.ToLower(strings.TrimSpace(opts.driver))
	opts.dsn = strings.TrimSpace(opts.dsn)

	switch opts.driver {
	case "postgres":
		if opts.dsn == "" {
			opts.dsn = strings.TrimSpace(getenv("OMS_POSTGRES_DSN"))
		}
	case "mysql":
		if opts.dsn == "" {
			opts.dsn = strings.TrimSpace(getenv("OMS_MYSQL_DSN"))
		}
		if opts.command != "up" {
			return options{}, fmt.Errorf("mysql driver supports only the up command, got %q", opts.command)
		}
	default:
		return options{}, fmt.Errorf("unsupported driver: %s (use postgres|mysql)", opts.driver)
	}

	switch opts.command {
	case "up", "down", "status":
	default:
		return options{}, fmt.Errorf("unsupported command: %s (use up|down|status)", opts.command)
	}
	if opts.steps < 0 {
		return options{}, errors.New("steps must not be negative")
	}
	if opts.dsn == "" {
		return options{}, fmt.Errorf("dsn is required: pass -dsn or set OMS_%s_DSN", strings.ToUpper(opts.driver))
	}
	return opts, nil
}

func run(args []string, out io.Writer, getenv func(string) string) error {
	opts, err := parseOptions(args, getenv)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if opts.driver == "mysql" {
		return applyMySQLSchema(ctx, opts.dsn, out)
	}
	return migratePostgres(ctx, opts, out)
}

func applyMySQLSchema(ctx context.Context, dsn string, out io.Writer) error {
	store, err := mysql.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open mysql store: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("apply mysql schema: %w", err)
	}
	_, _ = fmt.Fprintln(out, "mysql schema ok")
	return nil
}

func migratePostgres(ctx context.Context, opts options, out io.Writer) error {
	store, err := postgres.Open(ctx, opts.dsn)
	if err != nil {
		return fmt.Errorf("open postgres store: %w", err)
	}
	defer store.Close()

	switch opts.command {
	case "up":
		if err := store.MigrateUp(ctx, opts.steps); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
	case "down":
		steps := opts.steps
		if steps <= 0 {
			steps = 1
		}
		if err := store.MigrateDown(ctx, steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
	}

	state, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	printState(out, opts.command, state)
	return nil
}

func printState(out io.Writer, command string, state postgres.MigrationState) {
	_, _ = fmt.Fprintf(out, "migrate %s ok: version=%d applied=%d pending=%d\n", command, state.Version, state.Applied, len(state.Pending))
	for _, name := range state.Pending {
		_, _ = fmt.Fprintf(out, "  pending: %s\n", name)
	}
}
