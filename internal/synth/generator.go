package synth

import (
	"math"
	"math/rand"

	"github.com/undercut/pitwall/internal/catalog"
)

// Default generation bounds used when a training call supplies none.
var DefaultYears = []int{2023, 2024}

const (
	DefaultMaxEventsPerYear = 10
	DefaultSeed             = 42

	tempMinC   = 25.0
	tempMaxC   = 45.0
	noiseSigma = 0.3

	minStintLaps = 5
	maxStintLaps = 35
	stintStep    = 5
	ageStep      = 10
)

// Generator manufactures plausible tire-performance history from the
// reference tables. It is a physics sketch, not telemetry: the only contract
// is internal consistency (wear grows with age, severity and temperature) so
// the regressor downstream learns a sane response surface.
type Generator struct {
	catalog *catalog.Catalog
	rng     *rand.Rand
}

// NewGenerator builds a generator drawing randomness from the given seed.
// Equal seeds produce identical sample sets.
func NewGenerator(cat *catalog.Catalog, seed int64) *Generator {
	return &Generator{
		catalog: cat,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Generate produces one labeled sample per
// (year, track, driver, compound, stint length, tire age) combination.
// Tracks are capped per year by taking a prefix of the catalog's calendar
// order. Stint lengths run 5..35 laps in steps of 5; tire age samples the
// stint every 10 laps. Pure in-memory generation, no I/O.
func (g *Generator) Generate(years []int, maxEventsPerYear int) []Sample {
	tracks := g.catalog.Tracks()
	if maxEventsPerYear < 0 {
		maxEventsPerYear = 0
	}
	if maxEventsPerYear < len(tracks) {
		tracks = tracks[:maxEventsPerYear]
	}

	drivers := g.catalog.RankedDrivers()
	compounds := g.catalog.Compounds()

	var samples []Sample
	for range years {
		for _, track := range tracks {
			for _, driver := range drivers {
				for _, compound := range compounds {
					for stint := minStintLaps; stint <= maxStintLaps; stint += stintStep {
						for age := 0; age <= stint; age += ageStep {
							samples = append(samples, g.sample(track, driver, compound, age))
						}
					}
				}
			}
		}
	}
	return samples
}

func (g *Generator) sample(track catalog.TrackProfile, driver catalog.DriverProfile, compound catalog.CompoundProfile, age int) Sample {
	temp := tempMinC + g.rng.Float64()*(tempMaxC-tempMinC)
	lapNumber := age + 1 + g.rng.Intn(9)

	skillMultiplier := 2 - driver.TireSkill
	trackMultiplier := 1 + track.Severity
	tempMultiplier := 1 + (temp-25)/50
	fuelEffect := math.Max(0, (1-float64(lapNumber)/50)*0.3)

	degradation := compound.BaseDegradation*float64(age)*skillMultiplier*trackMultiplier*tempMultiplier +
		fuelEffect + g.rng.NormFloat64()*noiseSigma
	if degradation < 0 {
		degradation = 0
	}

	return Sample{
		DegradationSeconds: degradation,
		TireAge:            float64(age),
		Compound:           compound.Compound,
		Driver:             driver.Code,
		Track:              track.Name,
		TrackTemp:          temp,
		LapNumber:          float64(lapNumber),
		DriverSkill:        driver.TireSkill,
		TrackSeverity:      track.Severity,
		TrackLength:        track.LengthKM,
		FuelLoad:           math.Max(0, 110-float64(age)*1.8),
		StintPosition:      float64(age) + 1,
	}
}
