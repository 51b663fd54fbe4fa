package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare pit stop strategies",
	Long: `Compare pit stop scenarios for the current race situation.

Each --scenario takes the form NAME:PIT_LAP:COMPOUND. The server ranks
the scenarios by estimated time loss and flags the best one.

Examples:
  pitwall compare --driver HAM --track Silverstone --lap 20 \
    --scenario "Pit now:20:HARD" --scenario "Stay out:28:MEDIUM"`,
	RunE: runCompare,
}

var (
	compareDriver    string
	compareTrack     string
	compareLap       int
	compareLaps      int
	compareTemp      float64
	compareScenarios []string
)

func init() {
	compareCmd.Flags().StringVar(&compareDriver, "driver", "", "driver code, e.g. HAM")
	compareCmd.Flags().StringVar(&compareTrack, "track", "", "track name, e.g. Silverstone")
	compareCmd.Flags().IntVar(&compareLap, "lap", 0, "current lap number")
	compareCmd.Flags().IntVar(&compareLaps, "laps", 0, "total race laps")
	compareCmd.Flags().Float64Var(&compareTemp, "temp", 0, "track temperature in degrees C")
	compareCmd.Flags().StringArrayVar(&compareScenarios, "scenario", nil, "scenario as NAME:PIT_LAP:COMPOUND (repeatable)")
	rootCmd.AddCommand(compareCmd)
}

type compareScenario struct {
	Name     string `json:"name"`
	PitLap   int    `json:"pit_lap"`
	Compound string `json:"compound"`
}

type compareRequest struct {
	Driver     string            `json:"driver"`
	Track      string            `json:"track"`
	CurrentLap int               `json:"current_lap"`
	RaceLaps   int               `json:"race_laps,omitempty"`
	TrackTemp  *float64          `json:"track_temp,omitempty"`
	Strategies []compareScenario `json:"strategies,omitempty"`
}

type compareResult struct {
	Scenario       string  `json:"scenario"`
	PitLap         int     `json:"pit_lap"`
	Compound       string  `json:"compound"`
	TimeLoss       float64 `json:"estimated_time_loss"`
	Recommendation string  `json:"recommendation"`
}

type compareSkipped struct {
	Scenario string `json:"scenario"`
	Reason   string `json:"reason"`
}

type compareResponse struct {
	Driver     string           `json:"driver"`
	Track      string           `json:"track"`
	CurrentLap int              `json:"current_lap"`
	Best       *compareResult   `json:"best_strategy"`
	Results    []compareResult  `json:"strategy_analysis"`
	Skipped    []compareSkipped `json:"skipped"`
}

// parseScenario parses a NAME:PIT_LAP:COMPOUND flag value.
func parseScenario(s string) (compareScenario, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return compareScenario{}, fmt.Errorf("scenario %q: want NAME:PIT_LAP:COMPOUND", s)
	}

	name := strings.TrimSpace(parts[0])
	compound := strings.ToUpper(strings.TrimSpace(parts[2]))
	if name == "" || compound == "" {
		return compareScenario{}, fmt.Errorf("scenario %q: name and compound must not be empty", s)
	}

	lap, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return compareScenario{}, fmt.Errorf("scenario %q: invalid pit lap %q", s, parts[1])
	}

	return compareScenario{Name: name, PitLap: lap, Compound: compound}, nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	if compareDriver == "" || compareTrack == "" {
		return fmt.Errorf("--driver and --track are required")
	}
	if compareLap <= 0 {
		return fmt.Errorf("--lap is required and must be positive")
	}

	req := compareRequest{
		Driver:     strings.ToUpper(compareDriver),
		Track:      compareTrack,
		CurrentLap: compareLap,
		RaceLaps:   compareLaps,
	}
	if cmd.Flags().Changed("temp") {
		req.TrackTemp = &compareTemp
	}
	for _, s := range compareScenarios {
		sc, err := parseScenario(s)
		if err != nil {
			return err
		}
		req.Strategies = append(req.Strategies, sc)
	}

	client := NewClient()

	data, status, err := client.Post("/compare", req)
	if err != nil {
		return fmt.Errorf("failed to compare: %w", err)
	}

	if status != http.StatusOK {
		return apiError(status, data)
	}

	var resp compareResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("=== Strategy Comparison ===")
	fmt.Printf("%s at %s, lap %d\n\n", resp.Driver, resp.Track, resp.CurrentLap)

	for i, r := range resp.Results {
		marker := " "
		if resp.Best != nil && r.Scenario == resp.Best.Scenario {
			marker = "*"
		}
		fmt.Printf("%s %d. %-24s pit lap %-3d %-12s +%.2fs  %s\n",
			marker, i+1, r.Scenario, r.PitLap, r.Compound, r.TimeLoss, r.Recommendation)
	}

	if len(resp.Skipped) > 0 {
		fmt.Println("\nSkipped:")
		for _, s := range resp.Skipped {
			fmt.Printf("  %s: %s\n", s.Scenario, s.Reason)
		}
	}

	return nil
}
