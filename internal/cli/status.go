package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long:  `Show the model, optimizer and host status of a running server.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusLastRun struct {
	RunID     string    `json:"run_id"`
	TrainedAt time.Time `json:"trained_at"`
	Samples   int       `json:"samples"`
	R2        float64   `json:"r2"`
	RMSE      float64   `json:"rmse"`
}

type statusModel struct {
	Trained            bool           `json:"trained"`
	LastRun            *statusLastRun `json:"last_run"`
	AvailableCompounds []string       `json:"available_compounds"`
	SupportedDrivers   int            `json:"supported_drivers"`
}

type statusOptimizer struct {
	Trained  bool    `json:"trained"`
	Episodes int     `json:"episodes_completed"`
	Epsilon  float64 `json:"epsilon"`
	QStates  int     `json:"q_states"`
}

type statusHost struct {
	CPUPercent float64 `json:"cpu_percent"`
	CPUCores   int     `json:"cpu_cores"`
	MemPercent float64 `json:"memory_percent"`
	Goroutines int     `json:"goroutines"`
}

type statusResponse struct {
	Name          string          `json:"name"`
	Version       string          `json:"version"`
	UptimeSeconds float64         `json:"uptime_seconds"`
	Model         statusModel     `json:"model"`
	Optimizer     statusOptimizer `json:"optimizer"`
	Host          statusHost      `json:"host"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := NewClient()

	data, status, err := client.Get("/status")
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if status != http.StatusOK {
		return apiError(status, data)
	}

	var resp statusResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	uptime := time.Duration(resp.UptimeSeconds * float64(time.Second)).Round(time.Second)

	fmt.Println("=== Pitwall Status ===")
	fmt.Printf("Server: %s %s, up %s\n", resp.Name, resp.Version, uptime)
	fmt.Println()

	fmt.Println("Model:")
	fmt.Printf("  Trained:   %s\n", yesNo(resp.Model.Trained))
	if run := resp.Model.LastRun; run != nil {
		fmt.Printf("  Run:       %s (%s)\n", run.RunID, run.TrainedAt.Format(time.RFC3339))
		fmt.Printf("  Samples:   %d\n", run.Samples)
		fmt.Printf("  R2:        %.4f\n", run.R2)
		fmt.Printf("  RMSE:      %.4f\n", run.RMSE)
	}
	fmt.Printf("  Compounds: %d\n", len(resp.Model.AvailableCompounds))
	fmt.Printf("  Drivers:   %d\n", resp.Model.SupportedDrivers)
	fmt.Println()

	fmt.Println("Optimizer:")
	fmt.Printf("  Trained:  %s\n", yesNo(resp.Optimizer.Trained))
	fmt.Printf("  Episodes: %d\n", resp.Optimizer.Episodes)
	fmt.Printf("  Epsilon:  %.3f\n", resp.Optimizer.Epsilon)
	fmt.Printf("  Q-states: %d\n", resp.Optimizer.QStates)
	fmt.Println()

	fmt.Println("Host:")
	fmt.Printf("  CPU:        %.1f%% of %d cores\n", resp.Host.CPUPercent, resp.Host.CPUCores)
	fmt.Printf("  Memory:     %.1f%%\n", resp.Host.MemPercent)
	fmt.Printf("  Goroutines: %d\n", resp.Host.Goroutines)

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
