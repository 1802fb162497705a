package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/calebreed/promptmill/internal/cli"
	"github.com/calebreed/promptmill/internal/db"
	"github.com/calebreed/promptmill/internal/enhancer"
	"github.com/calebreed/promptmill/internal/provider"
	"github.com/calebreed/promptmill/internal/repository"
	"github.com/calebreed/promptmill/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := newLogger()

	// Determine DB path: env var or default ~/.promptmill/promptmill.db
	dbPath := os.Getenv("PROMPTMILL_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".promptmill", "promptmill.db")
	}

	rulesPath := os.Getenv("PROMPTMILL_RULES")
	if rulesPath == "" {
		rulesPath = "enhancement_rules.json"
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	historyRepo := repository.NewSQLiteHistoryRepo(database)
	rules := enhancer.NewRuleSet(rulesPath, logger)

	providerCfg := provider.LoadConfig()
	var observer provider.Observer = provider.NoopObserver{}
	if providerCfg.LogCalls {
		observer = provider.NewLogObserver(os.Stderr)
	}

	engines := service.NewEngines(
		providerCfg,
		rules,
		historyRepo,
		observer,
		logger,
		service.NewLogUseCaseObserver(os.Stderr),
	)

	app := &cli.App{
		Engines: engines,
		History: historyRepo,
		Rules:   rules,
		Logger:  logger,
	}

	return cli.NewRootCmd(app).Execute()
}

// newLogger writes human-readable logs on an interactive terminal and
// JSON otherwise, so piped/collected logs stay machine-parseable.
func newLogger() *slog.Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}
