// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package astronomy

// TwilightTier identifies the twilight angle that was used to compute
// dawn and dusk.
type TwilightTier string

const (
	TierAstronomical TwilightTier = "astronomical"
	TierNautical     TwilightTier = "nautical"
	TierCivil        TwilightTier = "civil"
	// TierContinuous indicates that the sun never descended as far as
	// civil twilight and hence there is no dawn or dusk.
	TierContinuous TwilightTier = "continuous"
)

// Angle returns the solar altitude for the tier, zero is returned for
// TierContinuous.
func (t TwilightTier) Angle() SolarAngle {
	switch t {
	case TierAstronomical:
		return AstronomicalTwilight
	case TierNautical:
		return NauticalTwilight
	case TierCivil:
		return CivilTwilight
	}
	return 0
}

var twilightLadder = []TwilightTier{TierAstronomical, TierNautical, TierCivil}

// Twilight returns the hour angle for dawn and dusk, trying astronomical,
// then nautical and finally civil twilight. It returns TierContinuous and
// false if none of these angles is reached.
func Twilight(latitude, declination float64) (TwilightTier, float64, bool) {
	for _, tier := range twilightLadder {
		if h, ok := HourAngle(latitude, declination, tier.Angle()); ok {
			return tier, h, true
		}
	}
	return TierContinuous, 0, false
}
