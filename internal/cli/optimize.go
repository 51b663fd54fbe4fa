package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Train the pit stop optimizer",
	Long: `Train the reinforcement learning pit stop optimizer on simulated races.

The agent learns when to pit and which compound to take by running
race simulations against the degradation model. Training accumulates:
repeated runs refine the same agent.

Examples:
  pitwall optimize
  pitwall optimize --episodes 1000
  pitwall optimize --drivers HAM,VER --tracks Monaco --seed 7`,
	RunE: runOptimize,
}

var (
	optimizeEpisodes int
	optimizeDrivers  []string
	optimizeTracks   []string
	optimizeSeed     int64
)

func init() {
	optimizeCmd.Flags().IntVar(&optimizeEpisodes, "episodes", 0, "training episodes to run")
	optimizeCmd.Flags().StringSliceVar(&optimizeDrivers, "drivers", nil, "driver codes to rotate through")
	optimizeCmd.Flags().StringSliceVar(&optimizeTracks, "tracks", nil, "tracks to rotate through")
	optimizeCmd.Flags().Int64Var(&optimizeSeed, "seed", 0, "random seed for the simulations")
	rootCmd.AddCommand(optimizeCmd)
}

type optimizeRequest struct {
	Episodes int      `json:"episodes,omitempty"`
	Drivers  []string `json:"drivers,omitempty"`
	Tracks   []string `json:"tracks,omitempty"`
	Seed     *int64   `json:"seed,omitempty"`
}

type optimizeResponse struct {
	Success           bool    `json:"success"`
	EpisodesCompleted int     `json:"episodes_completed"`
	BestRaceTime      float64 `json:"best_race_time"`
	BestPitStops      int     `json:"best_pit_stops"`
	Epsilon           float64 `json:"epsilon"`
}

func runOptimize(cmd *cobra.Command, args []string) error {
	req := optimizeRequest{
		Episodes: optimizeEpisodes,
		Drivers:  optimizeDrivers,
		Tracks:   optimizeTracks,
	}
	if cmd.Flags().Changed("seed") {
		req.Seed = &optimizeSeed
	}

	client := NewClient()

	data, status, err := client.Post("/optimizer/train", req)
	if err != nil {
		return fmt.Errorf("failed to optimize: %w", err)
	}

	if status != http.StatusOK {
		return apiError(status, data)
	}

	var resp optimizeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("=== Optimizer Training Complete ===")
	fmt.Printf("Episodes:  %d total\n", resp.EpisodesCompleted)
	fmt.Printf("Best race: %.1fs with %d stops\n", resp.BestRaceTime, resp.BestPitStops)
	fmt.Printf("Epsilon:   %.3f\n", resp.Epsilon)

	return nil
}
