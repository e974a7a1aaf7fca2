package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vzwtim/swift-revise/internal/config"
	"github.com/vzwtim/swift-revise/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "studyflow",
	Short: "Spaced-repetition quiz trainer",
	Long:  "StudyFlow — terminal quiz app that schedules reviews with spaced repetition.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuiz(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYFLOW_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("user", config.Default().UserID, "User id that owns the persisted cards")
	rootCmd.PersistentFlags().String("bank", "", "Path to a question bank JSON file (default: embedded bank)")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the config file, environment, and flags into a
// Config. The --db flag wins over everything for the database path.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	return cfg, nil
}

// openStore resolves the database path from config (falling back to
// STUDYFLOW_DB and then the XDG data dir) and opens it.
func openStore(cfg config.Config) (*store.Store, error) {
	path := cfg.DBPath
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create DB directory: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	st.SetPageSize(cfg.PageSize)
	return st, nil
}
