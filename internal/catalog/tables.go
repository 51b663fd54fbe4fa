package catalog

// Reference data for the 2023-2024 seasons. Severity and lap length are
// coarse paddock figures, not measured telemetry; they only need to order
// circuits sensibly. The track list is kept ascending by severity.
var defaultTracks = []TrackProfile{
	{Name: "Monaco", Severity: 0.3, LengthKM: 3.337},
	{Name: "Hungary", Severity: 0.4, LengthKM: 4.381},
	{Name: "Singapore", Severity: 0.5, LengthKM: 5.063},
	{Name: "Silverstone", Severity: 0.5, LengthKM: 5.891},
	{Name: "Spain", Severity: 0.6, LengthKM: 4.655},
	{Name: "Austria", Severity: 0.6, LengthKM: 4.318},
	{Name: "Netherlands", Severity: 0.6, LengthKM: 4.259},
	{Name: "Belgium", Severity: 0.7, LengthKM: 7.004},
	{Name: "Italy", Severity: 0.7, LengthKM: 5.793},
	{Name: "Brazil", Severity: 0.7, LengthKM: 4.309},
	{Name: "Turkey", Severity: 0.8, LengthKM: 5.338},
	{Name: "Abu Dhabi", Severity: 0.8, LengthKM: 5.554},
	{Name: "Bahrain", Severity: 0.9, LengthKM: 5.412},
	{Name: "Saudi Arabia", Severity: 0.9, LengthKM: 6.174},
	{Name: "Australia", Severity: 0.9, LengthKM: 5.278},
}

var defaultCompounds = []CompoundProfile{
	{Compound: CompoundSoft, BaseDegradation: 0.08},
	{Compound: CompoundMedium, BaseDegradation: 0.04},
	{Compound: CompoundHard, BaseDegradation: 0.02},
	{Compound: CompoundIntermediate, BaseDegradation: 0.15},
	{Compound: CompoundWet, BaseDegradation: 0.20},
}

var defaultDrivers = []DriverProfile{
	{Code: "HAM", TireSkill: 0.95},
	{Code: "ALO", TireSkill: 0.93},
	{Code: "VER", TireSkill: 0.92},
	{Code: "PER", TireSkill: 0.89},
	{Code: "LEC", TireSkill: 0.88},
	{Code: "NOR", TireSkill: 0.87},
	{Code: "BOT", TireSkill: 0.86},
	{Code: "SAI", TireSkill: 0.85},
	{Code: "GAS", TireSkill: 0.85},
	{Code: "STR", TireSkill: 0.84},
	{Code: "HUL", TireSkill: 0.83},
	{Code: "RUS", TireSkill: 0.82},
	{Code: "OCO", TireSkill: 0.82},
	{Code: "ALB", TireSkill: 0.81},
	{Code: "PIA", TireSkill: 0.80},
	{Code: "MAG", TireSkill: 0.80},
	{Code: "TSU", TireSkill: 0.79},
	{Code: "SAR", TireSkill: 0.78},
	{Code: "ZHO", TireSkill: 0.77},
	{Code: "LAW", TireSkill: 0.76},
}
