package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulsehabit/pulse/internal/daemon"
	"github.com/pulsehabit/pulse/internal/domain"
)

func init() {
	evaluateCmd.Flags().StringVar(&evalUser, "user", "", "User id to evaluate (required)")
	evaluateCmd.Flags().StringSliceVar(&evalCandidates, "candidate", nil,
		"Candidate notification type (repeatable; default: time-of-day set)")
	evaluateCmd.Flags().Float64Var(&evalStreakDays, "streak-days-left", -1,
		"Days until streak loss, for streak-at-risk triggers")
	_ = evaluateCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(evaluateCmd)
}

var (
	evalUser       string
	evalCandidates []string
	evalStreakDays float64
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run one evaluation cycle locally",
	Long: `Run a single decision cycle against the local state store and print the
outcome. The same code path the daemon's timer uses.`,
	RunE: runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	d, err := daemon.NewWithConfig(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	var candidates []domain.NotificationType
	for _, raw := range evalCandidates {
		t := domain.NotificationType(raw)
		if !t.Valid() {
			return fmt.Errorf("unknown notification type %q", raw)
		}
		candidates = append(candidates, t)
	}

	// A streak-lapse trigger carries the streak signal the store cannot know.
	var overrides map[domain.NotificationType]domain.Signals
	if evalStreakDays >= 0 {
		overrides = map[domain.NotificationType]domain.Signals{
			domain.TypeStreakAtRisk: {
				DaysUntilStreakLoss:   evalStreakDays,
				HourOpenRate:          0.5,
				DaysSinceCategorySent: -1,
				EstimatedImpact:       0.9,
				TrustLevel:            0.5,
			},
		}
	}

	decision, err := d.Runner.Trigger(time.Now(), evalUser, candidates, overrides)
	if err != nil {
		return err
	}
	if decision == nil {
		fmt.Println("No nudge: every candidate was gated, below threshold, or a silent day.")
		return nil
	}

	fmt.Printf("Decision %s\n", decision.HistoryID)
	fmt.Printf("  Type:     %s (%s)\n", decision.Type, decision.Category)
	fmt.Printf("  Title:    %s\n", decision.Title)
	fmt.Printf("  Body:     %s\n", decision.Body)
	fmt.Printf("  Score:    %d/100 (%s)\n", decision.Score.Total(), decision.Score.Reason)
	return nil
}
