package timeutil

import "time"

// BackoffParam shapes the delay between retries of a provider call:
// Initial, then Initial*Multiplier, Initial*Multiplier^2, ... capped at Max.
// A zero Max leaves the delay uncapped.
type BackoffParam struct {
	initialDuration time.Duration
	multiplier      float64
	maxDuration     time.Duration
}

func NewBackoffParam(initial time.Duration, multiplier float64, max time.Duration) BackoffParam {
	if multiplier < 1 {
		multiplier = 1
	}
	return BackoffParam{
		initialDuration: initial,
		multiplier:      multiplier,
		maxDuration:     max,
	}
}

func (b BackoffParam) InitialDuration() time.Duration { return b.initialDuration }
func (b BackoffParam) Multiplier() float64            { return b.multiplier }
func (b BackoffParam) MaxDuration() time.Duration     { return b.maxDuration }
