// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package astronomy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"
)

// AsrConvention represents the shadow length convention used to determine
// the afternoon (asr) time. The afternoon occurs when the shadow of a
// vertical object equals its noon shadow plus the object's height multiplied
// by the convention's shadow factor.
type AsrConvention int

const (
	AsrShafii AsrConvention = 1 // shadow factor 1, also used by the Maliki and Hanbali schools.
	AsrHanafi AsrConvention = 2 // shadow factor 2.
)

// ShadowFactor returns the shadow factor for the convention.
func (c AsrConvention) ShadowFactor() float64 {
	return float64(c)
}

func (c AsrConvention) String() string {
	switch c {
	case AsrShafii:
		return "shafii"
	case AsrHanafi:
		return "hanafi"
	}
	return fmt.Sprintf("AsrConvention(%d)", int(c))
}

// ParseAsrConvention parses 'shafii' (or 'standard', 'maliki', 'hanbali')
// and 'hanafi' or the equivalent shadow factors '1' and '2'.
func ParseAsrConvention(val string) (AsrConvention, error) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "shafii", "shafi'i", "standard", "maliki", "hanbali", "1":
		return AsrShafii, nil
	case "hanafi", "2":
		return AsrHanafi, nil
	}
	return 0, fmt.Errorf("%w: unknown asr convention %q, expected shafii or hanafi", ErrInvalidShadowFactor, val)
}

// ParseShadowFactor parses either a named AsrConvention or a positive
// numeric shadow factor.
func ParseShadowFactor(val string) (float64, error) {
	if c, err := ParseAsrConvention(val); err == nil {
		return c.ShadowFactor(), nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidShadowFactor, val)
	}
	return f, nil
}

// AsrAltitude returns the altitude of the sun at which the shadow of a
// vertical object is shadowFactor times its height plus its noon shadow. It
// returns false if the sun does not rise above the horizon at noon and
// hence there are no shadows.
func AsrAltitude(latitude, declination, shadowFactor float64) (SolarAngle, bool) {
	noonAltitude := NoonAltitude(latitude, declination)
	if noonAltitude <= 0 {
		return 0, false
	}
	zenith := unit.AngleFromDeg(90 - noonAltitude)
	altitude := unit.Angle(math.Atan(1 / (shadowFactor + zenith.Tan())))
	return SolarAngle(altitude.Deg()), true
}
