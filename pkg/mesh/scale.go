package mesh

// Scale maps a flow value linearly from [0, Max] onto [0, Height].
// A scale with Max == 0 maps every value to 0.
type Scale struct {
	Max    float64 `json:"max"`
	Height float64 `json:"height"`
}

// NewScale returns a scale with domain [0, maxCount] and range [0, height].
func NewScale(maxCount, height float64) Scale {
	return Scale{Max: maxCount, Height: height}
}

// Apply returns the scaled value of v.
func (s Scale) Apply(v float64) float64 {
	if s.Max <= 0 {
		return 0
	}
	return v / s.Max * s.Height
}
