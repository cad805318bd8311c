// Command migrate применяет и откатывает миграции схемы PostgreSQL.
//
//	migrate [-dsn DSN] [-steps N] up|down|status
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

	"github.com/vladislavdragonenkov/scm/internal/storage/postgres"
)

const (
	commandTimeout = 30 * time.Second
	envPostgresDSN = "SCM_POSTGRES_DSN"
)

// schema: операции над схемой, которые нужны утилите.
type schema interface {
	MigrateUp(ctx context.Context, steps int) error
	MigrateDown(ctx context.Context, steps int) error
	MigrationStatus(ctx context.Context) (postgres.MigrationState, error)
	Close() error
}

var openSchema = func(ctx context.Context, dsn string) (schema, error) {
	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dsn := fs.String("dsn", "", "PostgreSQL DSN (default $"+envPostgresDSN+")")
	steps := fs.Int("steps", 0, "migrations to apply or roll back; 0 means all for up and one for down")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: migrate [flags] up|down|status")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	command := "up"
	switch fs.NArg() {
	case 0:
	case 1:
		command = strings.ToLower(fs.Arg(0))
	default:
		fs.Usage()
		return 2
	}

	target := strings.TrimSpace(*dsn)
	if target == "" {
		target = strings.TrimSpace(getenv(envPostgresDSN))
	}
	if target == "" {
		fmt.Fprintf(stderr, "migrate: %s (or -dsn) is required\n", envPostgresDSN)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	db, err := openSchema(ctx, target)
	if err != nil {
		fmt.Fprintf(stderr, "migrate: open postgres store: %v\n", err)
		return 1
	}
	defer db.Close()

	if err := execute(ctx, db, command, *steps, stdout); err != nil {
		fmt.Fprintf(stderr, "migrate: %v\n", err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, db schema, command string, steps int, out io.Writer) error {
	var err error
	switch command {
	case "up":
		err = db.MigrateUp(ctx, steps)
	case "down":
		err = db.MigrateDown(ctx, steps)
	case "status":
	default:
		return fmt.Errorf("unknown command %q (use up, down or status)", command)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}

	state, err := db.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	fmt.Fprintf(out, "schema version %d, %d applied, %d pending\n", state.Version, state.Applied, len(state.Pending))
	for _, name := range state.Pending {
		fmt.Fprintf(out, "  pending %s\n", name)
	}
	return nil
}
