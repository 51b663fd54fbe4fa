package feature

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/undercut/pitwall/internal/catalog"
	"github.com/undercut/pitwall/internal/synth"
)

// VectorLen is the width of every encoded row. The order is fixed:
// [tire_age, compound_code, driver_code, track_code, track_temp, lap_number,
// driver_skill, track_severity, track_length, fuel_load, stint_position].
const VectorLen = 11

// UnknownCategoryError reports a categorical value that was not present when
// the encoders were fit. Callers get the offending field by name; nothing is
// silently mapped to a default code.
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s %q: not seen during training", e.Field, e.Value)
}

// LabelEncoder maps category strings to dense integer codes. Classes are
// sorted, so codes are reproducible for a given training set. Instances are
// immutable after fitting.
type LabelEncoder struct {
	classes []string
	codes   map[string]int
}

func fitLabels(values map[string]struct{}) *LabelEncoder {
	classes := make([]string, 0, len(values))
	for v := range values {
		classes = append(classes, v)
	}
	sort.Strings(classes)

	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		codes[c] = i
	}
	return &LabelEncoder{classes: classes, codes: codes}
}

// Code returns the integer code for a category.
func (e *LabelEncoder) Code(value string) (int, bool) {
	code, ok := e.codes[value]
	return code, ok
}

// Classes returns the known categories in code order.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

func (e *LabelEncoder) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Classes []string `json:"classes"`
	}{Classes: e.classes})
}

func (e *LabelEncoder) UnmarshalJSON(data []byte) error {
	var raw struct {
		Classes []string `json:"classes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	codes := make(map[string]int, len(raw.Classes))
	for i, c := range raw.Classes {
		codes[c] = i
	}
	e.classes = raw.Classes
	e.codes = codes
	return nil
}

// EncoderSet bundles the three categorical encoders fit in one training run.
// A set is built once by Fit, carried inside the model snapshot, and never
// mutated; mixing encoders across training runs is impossible by
// construction.
type EncoderSet struct {
	Compound *LabelEncoder `json:"compound"`
	Driver   *LabelEncoder `json:"driver"`
	Track    *LabelEncoder `json:"track"`
}

// Point is one observation before encoding, with the catalog-derived fields
// already resolved.
type Point struct {
	TireAge       float64
	Compound      catalog.Compound
	Driver        string
	Track         string
	TrackTemp     float64
	LapNumber     float64
	DriverSkill   float64
	TrackSeverity float64
	TrackLength   float64
	FuelLoad      float64
	StintPosition float64
}

// Fit builds the encoder set over the samples and returns the encoded design
// matrix and label vector alongside it.
func Fit(samples []synth.Sample) (*EncoderSet, [][]float64, []float64) {
	compounds := make(map[string]struct{})
	drivers := make(map[string]struct{})
	tracks := make(map[string]struct{})
	for _, s := range samples {
		compounds[string(s.Compound)] = struct{}{}
		drivers[s.Driver] = struct{}{}
		tracks[s.Track] = struct{}{}
	}

	set := &EncoderSet{
		Compound: fitLabels(compounds),
		Driver:   fitLabels(drivers),
		Track:    fitLabels(tracks),
	}

	x := make([][]float64, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		compoundCode, _ := set.Compound.Code(string(s.Compound))
		driverCode, _ := set.Driver.Code(s.Driver)
		trackCode, _ := set.Track.Code(s.Track)
		x[i] = row(s.TireAge, compoundCode, driverCode, trackCode,
			s.TrackTemp, s.LapNumber, s.DriverSkill, s.TrackSeverity,
			s.TrackLength, s.FuelLoad, s.StintPosition)
		y[i] = s.DegradationSeconds
	}
	return set, x, y
}

// Vector encodes one inference observation in the fixed feature order. An
// unseen compound, driver or track yields an *UnknownCategoryError naming
// the field.
func (set *EncoderSet) Vector(p Point) ([]float64, error) {
	compoundCode, ok := set.Compound.Code(string(p.Compound))
	if !ok {
		return nil, &UnknownCategoryError{Field: "compound", Value: string(p.Compound)}
	}
	driverCode, ok := set.Driver.Code(p.Driver)
	if !ok {
		return nil, &UnknownCategoryError{Field: "driver", Value: p.Driver}
	}
	trackCode, ok := set.Track.Code(p.Track)
	if !ok {
		return nil, &UnknownCategoryError{Field: "track", Value: p.Track}
	}
	return row(p.TireAge, compoundCode, driverCode, trackCode,
		p.TrackTemp, p.LapNumber, p.DriverSkill, p.TrackSeverity,
		p.TrackLength, p.FuelLoad, p.StintPosition), nil
}

func row(age float64, compoundCode, driverCode, trackCode int, temp, lap, skill, severity, length, fuel, stint float64) []float64 {
	return []float64{
		age,
		float64(compoundCode),
		float64(driverCode),
		float64(trackCode),
		temp,
		lap,
		skill,
		severity,
		length,
		fuel,
		stint,
	}
}
