package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict tire degradation for a stint",
	Long: `Predict cumulative tire degradation for a driver, track and compound.

The server answers from the trained model when it has seen the inputs,
and falls back to the compound wear formula otherwise.

Examples:
  pitwall predict --driver HAM --track Silverstone --compound MEDIUM --age 20
  pitwall predict --driver VER --track Monaco --compound SOFT --age 12 --temp 42`,
	RunE: runPredict,
}

var (
	predictAge      float64
	predictCompound string
	predictDriver   string
	predictTrack    string
	predictTemp     float64
	predictLap      float64
	predictFuel     float64
)

func init() {
	predictCmd.Flags().Float64Var(&predictAge, "age", 0, "tire age in laps")
	predictCmd.Flags().StringVar(&predictCompound, "compound", "", "tire compound (SOFT, MEDIUM, HARD, INTERMEDIATE, WET)")
	predictCmd.Flags().StringVar(&predictDriver, "driver", "", "driver code, e.g. HAM")
	predictCmd.Flags().StringVar(&predictTrack, "track", "", "track name, e.g. Silverstone")
	predictCmd.Flags().Float64Var(&predictTemp, "temp", 0, "track temperature in degrees C")
	predictCmd.Flags().Float64Var(&predictLap, "lap", 0, "current lap number")
	predictCmd.Flags().Float64Var(&predictFuel, "fuel", 0, "fuel load in kg")
	rootCmd.AddCommand(predictCmd)
}

type predictRequest struct {
	TireAge   float64  `json:"tire_age"`
	Compound  string   `json:"compound"`
	Driver    string   `json:"driver"`
	Track     string   `json:"track"`
	TrackTemp *float64 `json:"track_temp,omitempty"`
	LapNumber *float64 `json:"lap_number,omitempty"`
	FuelLoad  *float64 `json:"fuel_load,omitempty"`
}

type predictResponse struct {
	DegradationSeconds float64 `json:"degradation_seconds"`
	IsMLPrediction     bool    `json:"is_ml_prediction"`
	PredictionType     string  `json:"prediction_type"`
}

func runPredict(cmd *cobra.Command, args []string) error {
	if predictDriver == "" || predictTrack == "" || predictCompound == "" {
		return fmt.Errorf("--driver, --track and --compound are required")
	}
	if !cmd.Flags().Changed("age") {
		return fmt.Errorf("--age is required")
	}

	req := predictRequest{
		TireAge:  predictAge,
		Compound: strings.ToUpper(predictCompound),
		Driver:   strings.ToUpper(predictDriver),
		Track:    predictTrack,
	}
	if cmd.Flags().Changed("temp") {
		req.TrackTemp = &predictTemp
	}
	if cmd.Flags().Changed("lap") {
		req.LapNumber = &predictLap
	}
	if cmd.Flags().Changed("fuel") {
		req.FuelLoad = &predictFuel
	}

	client := NewClient()

	data, status, err := client.Post("/predict", req)
	if err != nil {
		return fmt.Errorf("failed to predict: %w", err)
	}

	if status != http.StatusOK {
		return apiError(status, data)
	}

	var resp predictResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Predicted degradation: %.3fs after %.0f laps on %s\n",
		resp.DegradationSeconds, predictAge, req.Compound)
	fmt.Printf("Source: %s\n", resp.PredictionType)

	return nil
}
