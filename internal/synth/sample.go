package synth

import "github.com/undercut/pitwall/internal/catalog"

// Sample is one labeled training row. Rows are produced by the generator and
// never mutated afterwards; the training pipeline is their only consumer.
type Sample struct {
	DegradationSeconds float64 // label: lap-time loss vs a fresh tire
	TireAge            float64
	Compound           catalog.Compound
	Driver             string
	Track              string
	TrackTemp          float64
	LapNumber          float64
	DriverSkill        float64
	TrackSeverity      float64
	TrackLength        float64
	FuelLoad           float64
	StintPosition      float64
}
