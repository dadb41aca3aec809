// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package alarms provides support for scheduling notifications relative
// to the daily solar events, eg. ten minutes before dawn.
package alarms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloudeng.io/prayertimes/astronomy"
	"cloudeng.io/prayertimes/datetime"
	"gopkg.in/yaml.v3"
)

// Spec specifies an alarm as an offset, in minutes, from a solar event.
// Negative offsets are before the event.
type Spec struct {
	Event         astronomy.Event `yaml:"event" json:"event"`
	OffsetMinutes int             `yaml:"offset" json:"offset,omitempty"`
	Label         string          `yaml:"label" json:"label,omitempty"`
}

// ParseSpec parses a spec of the form <event>[(+|-)<minutes>][:<label>],
// eg. 'dawn-10:wake up', 'asr' or 'sunset+5'.
func ParseSpec(val string) (Spec, error) {
	var spec Spec
	val = strings.TrimSpace(val)
	if idx := strings.Index(val, ":"); idx >= 0 {
		spec.Label = strings.TrimSpace(val[idx+1:])
		val = val[:idx]
	}
	name := val
	if idx := strings.IndexAny(val, "+-"); idx >= 0 {
		name = val[:idx]
		offset, err := strconv.Atoi(val[idx:])
		if err != nil {
			return Spec{}, fmt.Errorf("invalid alarm offset: %q: %w", val, err)
		}
		spec.OffsetMinutes = offset
	}
	event, err := astronomy.ParseEvent(name)
	if err != nil {
		return Spec{}, err
	}
	spec.Event = event
	return spec, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Event names are parsed using
// astronomy.ParseEvent and hence synonyms such as 'asr' are accepted.
// A scalar is parsed using ParseSpec.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		spec, err := ParseSpec(node.Value)
		if err != nil {
			return err
		}
		*s = spec
		return nil
	}
	var raw struct {
		Event         string `yaml:"event"`
		OffsetMinutes int    `yaml:"offset"`
		Label         string `yaml:"label"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	event, err := astronomy.ParseEvent(raw.Event)
	if err != nil {
		return err
	}
	*s = Spec{Event: event, OffsetMinutes: raw.OffsetMinutes, Label: raw.Label}
	return nil
}

func (s Spec) String() string {
	var out strings.Builder
	out.WriteString(string(s.Event))
	if s.OffsetMinutes != 0 {
		fmt.Fprintf(&out, "%+d", s.OffsetMinutes)
	}
	if len(s.Label) > 0 {
		out.WriteString(":")
		out.WriteString(s.Label)
	}
	return out.String()
}

// Offset returns the offset as a time.Duration.
func (s Spec) Offset() time.Duration {
	return time.Duration(s.OffsetMinutes) * time.Minute
}

// Alarm represents a single occurrence of a Spec.
type Alarm struct {
	Location string
	Spec     Spec
	Date     datetime.CalendarDate
	When     time.Time
}

func (a Alarm) String() string {
	return fmt.Sprintf("%v %v %v %v", a.Date, a.When.Format("15:04"), a.Location, a.Spec)
}

type key struct {
	date   datetime.CalendarDate
	event  astronomy.Event
	offset int
}

func (a Alarm) key() key {
	return key{date: a.Date, event: a.Spec.Event, offset: a.Spec.OffsetMinutes}
}
