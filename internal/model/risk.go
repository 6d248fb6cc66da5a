package model

const (
	MinRisk     RiskValue = 0
	MaxRisk     RiskValue = 100
	DefaultRisk RiskValue = 50
)

// RiskValue is the user's risk tolerance on an integer 0..100 scale.
// Nothing reads it besides the screens that show it.
type RiskValue int

// NewRiskValue clamps v into [MinRisk, MaxRisk].
func NewRiskValue(v int) RiskValue {
	return RiskValue(v).clamp()
}

func (r RiskValue) Valid() bool {
	return r >= MinRisk && r <= MaxRisk
}

// Shift moves the value by delta, saturating at the bounds.
func (r RiskValue) Shift(delta int) RiskValue {
	return (r + RiskValue(delta)).clamp()
}

func (r RiskValue) Int() int {
	return int(r)
}

func (r RiskValue) clamp() RiskValue {
	switch {
	case r < MinRisk:
		return MinRisk
	case r > MaxRisk:
		return MaxRisk
	default:
		return r
	}
}
