package learner

import "math"

// Schedule is a geometric exploration decay toward a floor.
type Schedule struct {
	Start float64
	Min   float64
	Decay float64
}

func DefaultSchedule() Schedule {
	return Schedule{
		Start: DefaultEpsilonStart,
		Min:   DefaultEpsilonMin,
		Decay: DefaultEpsilonDecay,
	}
}

// Next returns epsilon after one decay step.
func (s Schedule) Next(epsilon float64) float64 {
	return math.Max(epsilon*s.Decay, s.Min)
}

// After returns epsilon after n decay steps from Start.
func (s Schedule) After(n int) float64 {
	return math.Max(s.Start*math.Pow(s.Decay, float64(n)), s.Min)
}
