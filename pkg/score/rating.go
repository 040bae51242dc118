package score

// Rating is the display label and color of a deal score band.
type Rating struct {
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"`
}

var (
	Excellent = Rating{Label: "Excellent", Color: "#22c55e"}
	Good      = Rating{Label: "Good", Color: "#eab308"}
	Fair      = Rating{Label: "Fair", Color: "#f97316"}
	Poor      = Rating{Label: "Poor", Color: "#ef4444"}
)

// Rate returns the band a deal score falls in.
func Rate(score int) Rating {
	switch {
	case score >= 70:
		return Excellent
	case score >= 50:
		return Good
	case score >= 30:
		return Fair
	default:
		return Poor
	}
}
