package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a race with the trained optimizer",
	Long: `Simulate a full race with the trained optimizer and report its
pit stop schedule.

Requires a prior 'pitwall optimize' run.

Examples:
  pitwall plan --driver HAM --track Silverstone
  pitwall plan --driver VER --track Monaco --position 3`,
	RunE: runPlan,
}

var (
	planDriver   string
	planTrack    string
	planPosition int
	planSeed     int64
)

func init() {
	planCmd.Flags().StringVar(&planDriver, "driver", "", "driver code, e.g. HAM")
	planCmd.Flags().StringVar(&planTrack, "track", "", "track name, e.g. Silverstone")
	planCmd.Flags().IntVar(&planPosition, "position", 0, "starting grid position")
	planCmd.Flags().Int64Var(&planSeed, "seed", 0, "random seed for the simulation")
	rootCmd.AddCommand(planCmd)
}

type planRequest struct {
	Driver           string `json:"driver,omitempty"`
	Track            string `json:"track,omitempty"`
	StartingPosition int    `json:"starting_position,omitempty"`
	Seed             *int64 `json:"seed,omitempty"`
}

type plannedStop struct {
	Lap      int    `json:"lap"`
	Compound string `json:"compound"`
	Position int    `json:"position"`
	TireAge  int    `json:"tire_age"`
}

type planSummary struct {
	TotalRaceTime   float64 `json:"total_race_time"`
	TotalPitStops   int     `json:"total_pit_stops"`
	FinalPosition   int     `json:"final_position"`
	AverageLapTime  float64 `json:"average_lap_time"`
	StrategyQuality string  `json:"strategy_quality"`
}

type planResponse struct {
	Driver          string        `json:"driver"`
	Track           string        `json:"track"`
	PitSchedule     []plannedStop `json:"pit_schedule"`
	RaceSummary     planSummary   `json:"race_summary"`
	ModelConfidence string        `json:"model_confidence"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	req := planRequest{
		Driver:           strings.ToUpper(planDriver),
		Track:            planTrack,
		StartingPosition: planPosition,
	}
	if cmd.Flags().Changed("seed") {
		req.Seed = &planSeed
	}

	client := NewClient()

	data, status, err := client.Post("/optimizer/plan", req)
	if err != nil {
		return fmt.Errorf("failed to plan: %w", err)
	}

	if status == http.StatusPreconditionFailed {
		return fmt.Errorf("optimizer is not trained yet, run 'pitwall optimize' first")
	}
	if status != http.StatusOK {
		return apiError(status, data)
	}

	var resp planResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("=== Race Plan: %s at %s ===\n", resp.Driver, resp.Track)
	fmt.Println("Pit stops:")
	if len(resp.PitSchedule) == 0 {
		fmt.Println("  (none planned)")
	}
	for _, stop := range resp.PitSchedule {
		fmt.Printf("  Lap %2d: box for %s (P%d, tires %d laps old)\n",
			stop.Lap, stop.Compound, stop.Position, stop.TireAge)
	}
	fmt.Printf("Race time: %.1fs (avg lap %.2fs)\n",
		resp.RaceSummary.TotalRaceTime, resp.RaceSummary.AverageLapTime)
	fmt.Printf("Finish:    P%d\n", resp.RaceSummary.FinalPosition)
	fmt.Printf("Quality:   %s (confidence: %s)\n",
		resp.RaceSummary.StrategyQuality, resp.ModelConfidence)

	return nil
}
