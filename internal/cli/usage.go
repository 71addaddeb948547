package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulsehabit/pulse/internal/daemon"
)

func init() {
	usageCmd.Flags().StringVar(&usageUser, "user", "", "User id (required)")
	_ = usageCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(usageCmd)
}

var usageUser string

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show a user's notification budget usage",
	RunE:  runUsage,
}

func runUsage(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	d, err := daemon.NewWithConfig(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	daily, weekly, prefs, err := d.Engine.Usage(time.Now(), usageUser)
	if err != nil {
		return err
	}

	fmt.Printf("Today (%s):     %d of %d sent\n", daily.Day, daily.CountSent, prefs.MaxPerDay)
	fmt.Printf("Week of %s: %d of %d sent\n", weekly.WeekStart, weekly.CountSent, prefs.MaxPerWeek)
	fmt.Printf("Silent days:    %d\n", weekly.SilentDays)
	if weekly.AtRiskEscalation {
		fmt.Println("At-risk escalation is active this week.")
	}
	return nil
}
