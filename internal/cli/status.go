package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulsehabit/pulse/internal/daemon"
	"github.com/pulsehabit/pulse/internal/health"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check a running Pulse daemon",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s:%d/health", cfg.API.Host, cfg.API.Port)
	client := &http.Client{Timeout: 3 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s: %w", url, err)
	}
	defer resp.Body.Close()

	var body struct {
		Status string          `json:"status"`
		Checks []health.Status `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Printf("Pulse daemon at %s:%d — %s\n", cfg.API.Host, cfg.API.Port, body.Status)
	for _, c := range body.Checks {
		state := "ok"
		if !c.Healthy {
			state = "failing: " + c.Error
		}
		fmt.Printf("  %-10s %s\n", c.Name, state)
	}
	return nil
}
