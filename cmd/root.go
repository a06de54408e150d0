package cmd

import (
	"fmt"

	"github.com/abhisek/mathsheet/internal/config"
	"github.com/abhisek/mathsheet/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "mathsheet",
	Short:        "Arithmetic worksheet generator",
	Long:         "Mathsheet generates printable arithmetic worksheets for primary-school practice.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MATHSHEET_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides MATHSHEET_CONFIG env var)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the file named by --config, falling back to
// MATHSHEET_CONFIG.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return config.Load(p)
	}
	return config.FromEnv()
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MATHSHEET_DB env var, then db_path from the config file, then the
// default XDG path. config.Load has already let the env var override the
// file, so cfg.DBPath carries both.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore loads the config and opens the database it points at.
func openStore(cmd *cobra.Command) (config.Config, *store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return cfg, nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, s, nil
}
