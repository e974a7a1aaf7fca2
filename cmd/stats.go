package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vzwtim/swift-revise/internal/quiz"
	"github.com/vzwtim/swift-revise/internal/srs"
	"github.com/vzwtim/swift-revise/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mastery and review statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		ctx := context.Background()
		now := time.Now()

		cards, err := st.Cards().LoadAll(ctx, cfg.UserID)
		if err != nil {
			return fmt.Errorf("load cards: %w", err)
		}
		cards, _ = store.Reconcile(cards, cat, now)

		out := cmd.OutOrStdout()
		for _, sub := range quiz.Breakdown(cat, cards, now) {
			fmt.Fprintf(out, "%s (%d問)\n", sub.Name, sub.Total)
			for _, level := range []srs.MasteryLevel{
				srs.LevelPerfect, srs.LevelGreat, srs.LevelGood,
				srs.LevelNew, srs.LevelBad, srs.LevelMiss,
			} {
				if n := sub.Levels[level]; n > 0 {
					fmt.Fprintf(out, "  %-8s %3d\n", level, n)
				}
			}
			perfect := sub.Levels[srs.LevelPerfect]
			fmt.Fprintf(out, "  期限切れ %d / 要復習 %d / 完璧 %d%%\n\n",
				sub.Due, sub.Review, percent(perfect, sub.Total))
		}

		all := make([]srs.Card, 0, len(cards))
		for _, c := range cards {
			all = append(all, c)
		}
		if next, ok := srs.NextReviewDate(all, now); ok {
			fmt.Fprintf(out, "次回の復習: %s\n", next.Format("2006/01/02"))
		}

		if sessionID, err := st.History().LatestSession(ctx, cfg.UserID); err == nil && sessionID != "" {
			recs, err := st.History().BySession(ctx, sessionID)
			if err != nil {
				return fmt.Errorf("load session history: %w", err)
			}
			correct := 0
			for _, r := range recs {
				if r.IsCorrect {
					correct++
				}
			}
			fmt.Fprintf(out, "前回のセッション: %d問中%d問正解\n", len(recs), correct)
		}

		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		answered, err := st.History().CountSince(ctx, cfg.UserID, startOfDay)
		if err != nil {
			return fmt.Errorf("count today's answers: %w", err)
		}
		fmt.Fprintf(out, "今日の回答: %d / 目標 %d\n", answered, cfg.DailyTarget)
		return nil
	},
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return part * 100 / total
}
