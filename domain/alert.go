package domain

// Light is the three-level alert band for a conversion ratio.
type Light string

const (
	LightRed    Light = "red"
	LightYellow Light = "yellow"
	LightGreen  Light = "green"

	// LightNone is reported for groups with no leads: no data, not a color.
	LightNone Light = ""
)

// Thresholds are the two admin-configurable cutoffs for the traffic light.
type Thresholds struct {
	RedMax    float64 `json:"red_max"`
	YellowMax float64 `json:"yellow_max"`
}

// DefaultThresholds mirrors the factory settings: red up to 10%, yellow up
// to 25%.
func DefaultThresholds() Thresholds {
	return Thresholds{RedMax: 0.10, YellowMax: 0.25}
}

// Clamp forces the cutoffs into their legal ranges: RedMax into [0, 0.9] and
// YellowMax into [RedMax, 0.95]. Out-of-range input is corrected, never
// rejected.
func (t Thresholds) Clamp() Thresholds {
	if t.RedMax < 0 {
		t.RedMax = 0
	}
	if t.RedMax > 0.9 {
		t.RedMax = 0.9
	}
	if t.YellowMax < t.RedMax {
		t.YellowMax = t.RedMax
	}
	if t.YellowMax > 0.95 {
		t.YellowMax = 0.95
	}
	return t
}

// Classify maps a conversion ratio to its alert band: red when
// ratio <= RedMax, yellow when RedMax < ratio <= YellowMax, green above.
// Callers are expected to clamp the thresholds first; Classify clamps again
// so a raw Thresholds value cannot produce an inverted band.
func Classify(ratio float64, t Thresholds) Light {
	t = t.Clamp()
	switch {
	case ratio <= t.RedMax:
		return LightRed
	case ratio <= t.YellowMax:
		return LightYellow
	default:
		return LightGreen
	}
}
