package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the tire degradation model",
	Long: `Train the tire degradation model on synthetic stint data.

The server generates the training set, fits a fresh model, and answers
with validation metrics once the new model is serving predictions.
Omitted flags fall back to the server's configured defaults.

Examples:
  pitwall train
  pitwall train --years 2023,2024 --events 10
  pitwall train --seed 42`,
	RunE: runTrain,
}

var (
	trainYears  []int
	trainEvents int
	trainSeed   int64
)

func init() {
	trainCmd.Flags().IntSliceVar(&trainYears, "years", nil, "seasons to generate data for")
	trainCmd.Flags().IntVar(&trainEvents, "events", 0, "max events per season")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 0, "random seed for data generation")
	rootCmd.AddCommand(trainCmd)
}

type trainRequest struct {
	Years            []int  `json:"years,omitempty"`
	MaxEventsPerYear int    `json:"max_events_per_year,omitempty"`
	Seed             *int64 `json:"seed,omitempty"`
}

type trainResponse struct {
	Success    bool    `json:"success"`
	RunID      string  `json:"run_id"`
	R2         float64 `json:"r2"`
	RMSE       float64 `json:"rmse"`
	Samples    int     `json:"samples"`
	DurationMS int64   `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

func runTrain(cmd *cobra.Command, args []string) error {
	req := trainRequest{
		Years:            trainYears,
		MaxEventsPerYear: trainEvents,
	}
	if cmd.Flags().Changed("seed") {
		req.Seed = &trainSeed
	}

	client := NewClient()

	data, status, err := client.Post("/train", req)
	if err != nil {
		return fmt.Errorf("failed to train: %w", err)
	}

	if status != http.StatusOK {
		return apiError(status, data)
	}

	var resp trainResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	if !resp.Success {
		return fmt.Errorf("training failed: %s", resp.Error)
	}

	fmt.Println("=== Training Complete ===")
	fmt.Printf("Run:      %s\n", resp.RunID)
	fmt.Printf("Samples:  %d\n", resp.Samples)
	fmt.Printf("R2:       %.4f\n", resp.R2)
	fmt.Printf("RMSE:     %.4f\n", resp.RMSE)
	fmt.Printf("Duration: %dms\n", resp.DurationMS)

	return nil
}
