// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package datetime

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Place represents a location on the earth and the timezone that times
// at that location are to be displayed in.
type Place struct {
	TimeLocation *time.Location
	Latitude     float64
	Longitude    float64
}

// NewPlace returns a Place for the specified coordinates and timezone
// identifier, the timezone is resolved using LoadLocation.
func NewPlace(latitude, longitude float64, timezone string) (Place, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return Place{}, err
	}
	return Place{TimeLocation: loc, Latitude: latitude, Longitude: longitude}, nil
}

var fixedOffsetRE = regexp.MustCompile(`^(?:UTC|GMT)?([+-])(\d{1,2})(?::?(\d{2}))?$`)

// LoadLocation resolves a timezone identifier which may be an IANA
// name (eg. America/New_York), "UTC" or a fixed offset from UTC in any of
// the forms 'UTC+03:00', 'GMT-4', '+0530' or '-04:00'. The empty string,
// "Local" and unknown names result in an error wrapping ErrInvalidTimezone;
// neither a default nor the host's timezone is ever substituted.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return nil, fmt.Errorf("%w: empty timezone", ErrInvalidTimezone)
	}
	switch strings.ToUpper(name) {
	case "UTC", "GMT", "Z":
		return time.UTC, nil
	case "LOCAL":
		return nil, fmt.Errorf("%w: %q: the host's timezone is not supported", ErrInvalidTimezone, name)
	}
	if m := fixedOffsetRE.FindStringSubmatch(strings.ToUpper(name)); m != nil {
		return fixedZone(name, m[1], m[2], m[3])
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, name, err)
	}
	return loc, nil
}

func fixedZone(name, sign, hours, minutes string) (*time.Location, error) {
	h, _ := strconv.Atoi(hours)
	m := 0
	if len(minutes) > 0 {
		m, _ = strconv.Atoi(minutes)
	}
	if h > 14 || m > 59 {
		return nil, fmt.Errorf("%w: %q: offset out of range", ErrInvalidTimezone, name)
	}
	offset := h*3600 + m*60
	if sign == "-" {
		offset = -offset
	}
	return time.FixedZone(fmt.Sprintf("UTC%s%02d:%02d", sign, h, m), offset), nil
}

type placeKey struct{}

// ContextWithPlace returns a new context with the given Place stored in it.
func ContextWithPlace(ctx context.Context, place Place) context.Context {
	return context.WithValue(ctx, placeKey{}, place)
}

// PlaceFromContext returns the Place stored in the given context and
// true, or the zero value and false if there is none.
func PlaceFromContext(ctx context.Context) (Place, bool) {
	p, ok := ctx.Value(placeKey{}).(Place)
	return p, ok
}
