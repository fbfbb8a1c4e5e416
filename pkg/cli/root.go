// Package cli implements the dirgate admin command line. It operates on the
// directory store directly, without going through the HTTP API.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dirgate/internal/app"
	"dirgate/internal/config"
	internaldb "dirgate/internal/db"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var dbPath string

	rootCmd := &cobra.Command{
		Use:           "dirgate",
		Short:         "Directory engine admin CLI",
		Long:          "Administrative commands for the directory access and policy engine.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite store (defaults to DB_PATH)")

	rootCmd.AddCommand(newCreateAdminCmd(&dbPath))
	rootCmd.AddCommand(newSeedCmd(&dbPath))
	return rootCmd
}

// openApp loads configuration, opens the store, runs migrations, and wires
// the application. The returned closer shuts everything down.
func openApp(dbPath string) (*app.App, func(), error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, nil, fmt.Errorf("dotenv: %w", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.DBPath, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	if err := internaldb.RunMigrations(writeDB); err != nil {
		writeDB.Close()
		readDB.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	a := app.New(app.Deps{Cfg: cfg, WriteDB: writeDB, ReadDB: readDB, Logger: logger})
	closer := func() {
		a.Recorder.Close()
		writeDB.Close()
		readDB.Close()
	}
	return a, closer, nil
}
