// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package datetime

import (
	"strings"
	"time"
)

// DynamicTimeOfDay is a function that returns the time at which an event
// occurs on a given date and place and is intended to be evaluated once per
// day to calculate events such as sunrise, sunset etc. It returns false
// if the event does not occur on that date.
type DynamicTimeOfDay interface {
	Name() string
	Evaluate(cd CalendarDate, place Place) (time.Time, bool)
}

type DynamicTimeOfDayList []DynamicTimeOfDay

func (dl DynamicTimeOfDayList) String() string {
	var out strings.Builder
	for i, d := range dl {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(d.Name())
	}
	return out.String()
}
