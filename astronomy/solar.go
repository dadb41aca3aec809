// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package astronomy provides solar position and solar event (dawn, sunrise,
// solar noon, afternoon/asr, sunset and dusk) calculations for a location
// and date, together with equinox/solstice dates.
//
// The solar position follows the NOAA solar calculator, which is accurate
// to within a minute or so for latitudes between +/- 72 degrees.
package astronomy

import (
	"math"

	"cloudeng.io/prayertimes/datetime"
	"github.com/mooncaker816/learnmeeus/v3/julian"
	"github.com/soniakeys/unit"
)

// SolarAngle is the altitude of the sun, in degrees, relative to the
// horizon. Negative values are below the horizon.
type SolarAngle float64

const (
	// HorizonAngle is the altitude of the sun's upper limb at geometric
	// sunrise/sunset allowing for atmospheric refraction.
	HorizonAngle         SolarAngle = -0.833
	CivilTwilight        SolarAngle = -6
	NauticalTwilight     SolarAngle = -12
	AstronomicalTwilight SolarAngle = -18
)

// J2000 is the Julian day of the J2000.0 epoch.
const J2000 = 2451545.0

// JulianDay returns the Julian day for midnight UTC at the start of
// the specified date plus the fraction of a day given by dayFraction.
func JulianDay(date datetime.CalendarDate, dayFraction float64) float64 {
	return julian.CalendarGregorianToJD(date.Year, int(date.Month), float64(date.Day)+dayFraction)
}

// JulianCentury returns the number of Julian centuries since J2000.0.
func JulianCentury(jd float64) float64 {
	return (jd - J2000) / 36525
}

// SolarPosition holds the intermediate and final values of the solar
// position calculation. All angles are in degrees.
type SolarPosition struct {
	JulianDay         float64
	JulianCentury     float64
	MeanLongitude     float64 // L0, normalized to [0, 360).
	MeanAnomaly       float64 // M
	Eccentricity      float64 // of the earth's orbit.
	EquationOfCenter  float64 // C
	TrueLongitude     float64 // L0 + C
	ApparentLongitude float64 // TrueLongitude corrected for nutation and aberration.
	Obliquity         float64 // corrected obliquity of the ecliptic.
	RightAscension    float64 // normalized to [0, 360).
	Declination       float64
	EquationOfTime    float64 // minutes.
}

func deg(a float64) unit.Angle {
	return unit.AngleFromDeg(a)
}

// normalize360 normalizes an angle to [0, 360).
func normalize360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// normalize180 normalizes an angle to (-180, 180].
func normalize180(a float64) float64 {
	a = normalize360(a)
	if a > 180 {
		a -= 360
	}
	return a
}

// SolarPositionAt returns the position of the sun at the specified
// Julian day.
func SolarPositionAt(jd float64) SolarPosition {
	t := JulianCentury(jd)
	p := SolarPosition{JulianDay: jd, JulianCentury: t}

	p.MeanLongitude = normalize360(280.46646 + t*(36000.76983+0.0003032*t))
	p.MeanAnomaly = 357.52911 + t*(35999.05029-0.0001537*t)
	p.Eccentricity = 0.016708634 - t*(0.000042037+0.0000001267*t)

	m := deg(p.MeanAnomaly)
	p.EquationOfCenter = m.Sin()*(1.914602-t*(0.004817+0.000014*t)) +
		deg(2*p.MeanAnomaly).Sin()*(0.019993-0.000101*t) +
		deg(3*p.MeanAnomaly).Sin()*0.000289
	p.TrueLongitude = p.MeanLongitude + p.EquationOfCenter

	omega := deg(125.04 - 1934.136*t)
	p.ApparentLongitude = p.TrueLongitude - 0.00569 - 0.00478*omega.Sin()

	meanObliquity := 23 + (26+(21.448-t*(46.815+t*(0.00059-t*0.001813)))/60)/60
	p.Obliquity = meanObliquity + 0.00256*omega.Cos()

	lambda, epsilon := deg(p.ApparentLongitude), deg(p.Obliquity)
	ra := math.Atan2(epsilon.Cos()*lambda.Sin(), lambda.Cos())
	p.RightAscension = normalize360(unit.Angle(ra).Deg())
	p.Declination = unit.Angle(math.Asin(epsilon.Sin() * lambda.Sin())).Deg()

	p.EquationOfTime = 4 * normalize180(p.MeanLongitude-p.RightAscension)
	return p
}

// SolarNoon returns the time of solar noon, in decimal hours UTC, for the
// given equation of time (in minutes) and longitude.
func SolarNoon(equationOfTime, longitude float64) float64 {
	return 12 - equationOfTime/60 - longitude/15
}

// HourAngle returns the hour angle, in degrees, at which the sun crosses
// the specified altitude for an observer at latitude when the sun's
// declination is as given. It returns false if the sun never reaches that
// altitude, ie. it remains above or below it for the whole day.
func HourAngle(latitude, declination float64, altitude SolarAngle) (float64, bool) {
	lat, dec := deg(latitude), deg(declination)
	cosH := (deg(float64(altitude)).Sin() - lat.Sin()*dec.Sin()) / (lat.Cos() * dec.Cos())
	if math.IsNaN(cosH) || math.IsInf(cosH, 0) || math.Abs(cosH) > 1 {
		return 0, false
	}
	return unit.Angle(math.Acos(cosH)).Deg(), true
}

// NoonAltitude returns the altitude of the sun at solar noon.
func NoonAltitude(latitude, declination float64) float64 {
	return 90 - math.Abs(latitude-declination)
}
