package importer

import (
	"strconv"
	"strings"
	"time"
)

// Explicit layouts tried first, in priority order. Day-first beats
// month-first for ambiguous slash dates.
var strictDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
}

// Month-name forms resolve to the first day of that month.
var monthYearLayouts = []string{
	"Jan 2006",
	"January 2006",
	"Jan 06",
}

var freeTextDateLayouts = []string{
	"2 January 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// Serial 25569 is 1970-01-01 in the 1900 date system; anything below it is
// rejected as an implausible ancient date rather than parsed.
const minValidSerial = 25569

// excelEpoch is Dec 30 1899, which absorbs the 1900 leap-year bug so that
// modern serials land on the right day.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate resolves a raw cell value to a calendar date, or nil when it
// cannot. It never returns an error: unparseable input is a warning-level
// problem for the caller, not a failure.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	// Strict formats, accepted only when re-formatting reproduces the input
	// exactly. This rejects silent rollovers like day 32 and keeps the
	// day-first/month-first priority deterministic.
	for _, layout := range strictDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if t.Format(layout) == raw {
				return &t
			}
		}
	}

	for _, layout := range monthYearLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if t.Year() < 2000 {
				// Two-digit years belong to the 2000s here.
				t = t.AddDate(100, 0, 0)
			}
			return &t
		}
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial < minValidSerial {
			return nil
		}
		t := excelEpoch.AddDate(0, 0, int(serial))
		return &t
	}

	// Free-text forms; time.Parse already rejects impossible calendar dates
	// such as Feb 29 outside a leap year.
	for _, layout := range freeTextDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}

	return nil
}
