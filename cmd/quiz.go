package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vzwtim/swift-revise/internal/catalog"
	"github.com/vzwtim/swift-revise/internal/tui"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Start the quiz UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuiz(cmd)
	},
}

// runQuiz opens the store and launches the TUI over the question bank.
func runQuiz(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return tui.Run(cat, st, cfg)
}

// loadCatalog returns the embedded question bank, or the file named by
// --bank.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	if path, _ := cmd.Flags().GetString("bank"); path != "" {
		cat, err := catalog.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load question bank: %w", err)
		}
		return cat, nil
	}
	return catalog.Default()
}
