package catalog

import (
	"encoding/json"
	"sort"
)

// Compound identifies a tire rubber formulation.
type Compound string

const (
	CompoundSoft         Compound = "SOFT"
	CompoundMedium       Compound = "MEDIUM"
	CompoundHard         Compound = "HARD"
	CompoundIntermediate Compound = "INTERMEDIATE"
	CompoundWet          Compound = "WET"
)

// TrackProfile describes how a circuit treats tires.
type TrackProfile struct {
	Name     string  `json:"name"`
	Severity float64 `json:"severity"`  // 0..1, higher wears tires faster
	LengthKM float64 `json:"length_km"`
}

// CompoundProfile carries the base wear rate of a compound in seconds of
// lap-time loss per lap of tire age.
type CompoundProfile struct {
	Compound        Compound `json:"compound"`
	BaseDegradation float64  `json:"base_degradation"`
}

// DriverProfile rates a driver's tire management. Higher skill means the
// tires last longer.
type DriverProfile struct {
	Code      string  `json:"code"`
	TireSkill float64 `json:"tire_skill"` // (0,1]
}

// Values used when a caller asks about an entity the tables do not list.
const (
	DefaultSeverity = 0.7
	DefaultLengthKM = 5.0
	DefaultSkill    = 0.8
	DefaultBaseRate = 0.05
)

// Catalog bundles the three reference tables. Instances are immutable after
// construction and safe for concurrent readers.
type Catalog struct {
	trackOrder []TrackProfile
	tracks     map[string]TrackProfile
	compounds  map[Compound]CompoundProfile
	drivers    map[string]DriverProfile
}

// Default returns the built-in reference tables.
func Default() *Catalog {
	return build(defaultTracks, defaultCompounds, defaultDrivers)
}

func build(tracks []TrackProfile, compounds []CompoundProfile, drivers []DriverProfile) *Catalog {
	c := &Catalog{
		trackOrder: make([]TrackProfile, len(tracks)),
		tracks:     make(map[string]TrackProfile, len(tracks)),
		compounds:  make(map[Compound]CompoundProfile, len(compounds)),
		drivers:    make(map[string]DriverProfile, len(drivers)),
	}
	copy(c.trackOrder, tracks)
	for _, t := range tracks {
		c.tracks[t.Name] = t
	}
	for _, p := range compounds {
		c.compounds[p.Compound] = p
	}
	for _, d := range drivers {
		c.drivers[d.Code] = d
	}
	return c
}

// Track looks up a circuit profile by name.
func (c *Catalog) Track(name string) (TrackProfile, bool) {
	t, ok := c.tracks[name]
	return t, ok
}

// Severity returns the wear severity for a track, or DefaultSeverity when
// the track is not listed.
func (c *Catalog) Severity(name string) float64 {
	if t, ok := c.tracks[name]; ok {
		return t.Severity
	}
	return DefaultSeverity
}

// LengthKM returns the lap length for a track, or DefaultLengthKM when the
// track is not listed.
func (c *Catalog) LengthKM(name string) float64 {
	if t, ok := c.tracks[name]; ok {
		return t.LengthKM
	}
	return DefaultLengthKM
}

// CompoundProfile looks up a compound.
func (c *Catalog) CompoundProfile(compound Compound) (CompoundProfile, bool) {
	p, ok := c.compounds[compound]
	return p, ok
}

// HasCompound reports whether the compound is listed.
func (c *Catalog) HasCompound(compound Compound) bool {
	_, ok := c.compounds[compound]
	return ok
}

// BaseRate returns the base degradation rate for a compound, or
// DefaultBaseRate when the compound is not listed.
func (c *Catalog) BaseRate(compound Compound) float64 {
	if p, ok := c.compounds[compound]; ok {
		return p.BaseDegradation
	}
	return DefaultBaseRate
}

// Driver looks up a driver profile by three-letter code.
func (c *Catalog) Driver(code string) (DriverProfile, bool) {
	d, ok := c.drivers[code]
	return d, ok
}

// Skill returns the tire-management skill for a driver, or DefaultSkill when
// the driver is not listed.
func (c *Catalog) Skill(code string) float64 {
	if d, ok := c.drivers[code]; ok {
		return d.TireSkill
	}
	return DefaultSkill
}

// Tracks returns the circuits in calendar order (ascending severity). The
// synthetic generator caps events per year by taking a prefix of this order.
func (c *Catalog) Tracks() []TrackProfile {
	out := make([]TrackProfile, len(c.trackOrder))
	copy(out, c.trackOrder)
	return out
}

// Compounds returns the compound profiles from softest to hardest, then the
// wet-weather compounds.
func (c *Catalog) Compounds() []CompoundProfile {
	order := []Compound{CompoundSoft, CompoundMedium, CompoundHard, CompoundIntermediate, CompoundWet}
	out := make([]CompoundProfile, 0, len(order))
	for _, name := range order {
		if p, ok := c.compounds[name]; ok {
			out = append(out, p)
		}
	}
	return out
}

// RankedDrivers returns drivers sorted by tire skill, best first. Ties keep
// alphabetical order so the ranking is stable.
func (c *Catalog) RankedDrivers() []DriverProfile {
	out := make([]DriverProfile, 0, len(c.drivers))
	for _, d := range c.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TireSkill != out[j].TireSkill {
			return out[i].TireSkill > out[j].TireSkill
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// catalogJSON is the serialized form carried inside model artifacts so a
// restored model predicts with the exact tables it was trained against.
type catalogJSON struct {
	Tracks    []TrackProfile    `json:"tracks"`
	Compounds []CompoundProfile `json:"compounds"`
	Drivers   []DriverProfile   `json:"drivers"`
}

func (c *Catalog) MarshalJSON() ([]byte, error) {
	drivers := c.RankedDrivers()
	return json.Marshal(catalogJSON{
		Tracks:    c.Tracks(),
		Compounds: c.Compounds(),
		Drivers:   drivers,
	})
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	var raw catalogJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = *build(raw.Tracks, raw.Compounds, raw.Drivers)
	return nil
}
