package analysis

// categoryUnavailable marks an index the profile could not support.
const categoryUnavailable = "unavailable"

// categoryBand maps an inclusive lower bound to an ordinal label. Bands are
// ordered ascending; the last band whose bound the value reaches wins.
type categoryBand struct {
	min   float64
	label string
}

// Fixed thresholds per standard operational usage; these are lookup tables,
// not physics, and live here so calibration changes stay in one place.
var (
	capeCategories = []categoryBand{
		{0, "none"},
		{300, "marginal"},
		{1000, "moderate"},
		{2500, "high"},
		{4000, "extreme"},
	}

	kIndexCategories = []categoryBand{
		{-1000, "none"},
		{20, "isolated"},
		{26, "scattered"},
		{32, "numerous"},
		{38, "widespread"},
	}

	totalTotalsCategories = []categoryBand{
		{-1000, "none"},
		{44, "possible"},
		{50, "likely"},
		{56, "severe"},
	}

	helicityCategories = []categoryBand{
		{-1000000, "none"},
		{100, "marginal"},
		{250, "supercell"},
		{400, "tornadic"},
	}
)

func categorize(bands []categoryBand, value float64) string {
	label := bands[0].label
	for _, b := range bands {
		if value >= b.min {
			label = b.label
		}
	}
	return label
}
