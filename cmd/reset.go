package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all cards, history, and progress for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.UserID == "" {
			return fmt.Errorf("no user configured, nothing to reset")
		}
		if !resetYes {
			return fmt.Errorf("this deletes every card for user %q; rerun with --yes to confirm", cfg.UserID)
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		if err := st.Cards().DeleteAll(ctx, cfg.UserID); err != nil {
			return fmt.Errorf("delete cards: %w", err)
		}
		if err := st.History().DeleteAll(ctx, cfg.UserID); err != nil {
			return fmt.Errorf("delete history: %w", err)
		}
		if err := st.Progress().DeleteAll(ctx, cfg.UserID); err != nil {
			return fmt.Errorf("delete progress: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Reset all data for user %q\n", cfg.UserID)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Skip the confirmation prompt")
}
