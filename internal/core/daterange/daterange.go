// Package daterange turns a named date filter into a concrete time interval.
package daterange

import (
	"fmt"
	"strings"
	"time"
)

// Filter names a preset date window.
type Filter string

const (
	FilterToday     Filter = "today"
	FilterYesterday Filter = "yesterday"
	FilterTomorrow  Filter = "tomorrow"
	FilterWeek      Filter = "week"
	FilterMonth     Filter = "month"
	FilterYear      Filter = "year"
	FilterCustom    Filter = "custom"
	FilterAll       Filter = "all"
)

// Filters lists every filter in the order presented to users.
var Filters = []Filter{
	FilterToday,
	FilterYesterday,
	FilterTomorrow,
	FilterWeek,
	FilterMonth,
	FilterYear,
	FilterAll,
	FilterCustom,
}

// IsValid reports whether f is a known filter.
func (f Filter) IsValid() bool {
	switch f {
	case FilterToday, FilterYesterday, FilterTomorrow, FilterWeek,
		FilterMonth, FilterYear, FilterCustom, FilterAll:
		return true
	default:
		return false
	}
}

// ParseFilter validates a filter name. Empty input means FilterAll.
func ParseFilter(v string) (Filter, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return FilterAll, nil
	}
	f := Filter(v)
	if !f.IsValid() {
		return "", fmt.Errorf("unknown date filter %q", v)
	}
	return f, nil
}

// Interval is an inclusive time range. A nil endpoint is open; an interval
// with both endpoints nil is unbounded.
type Interval struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// Unbounded reports whether the interval matches all time.
func (iv Interval) Unbounded() bool {
	return iv.From == nil && iv.To == nil
}

// Contains reports whether ts lies within the interval, endpoints included.
func (iv Interval) Contains(ts time.Time) bool {
	if iv.From != nil && ts.Before(*iv.From) {
		return false
	}
	if iv.To != nil && ts.After(*iv.To) {
		return false
	}
	return true
}

// Custom is a caller-supplied range for FilterCustom. Either end may be
// missing.
type Custom struct {
	From *time.Time
	To   *time.Time
}

// Resolve computes the interval for filter relative to now. Day boundaries
// are taken in now's location.
//
// ok is false only for FilterCustom with a missing endpoint, or an unknown
// filter. Callers must treat that as "nothing matches", unlike FilterAll
// which resolves to an unbounded interval.
func Resolve(filter Filter, custom Custom, now time.Time) (Interval, bool) {
	switch filter {
	case FilterAll:
		return Interval{}, true
	case FilterToday:
		return day(now), true
	case FilterYesterday:
		return day(now.AddDate(0, 0, -1)), true
	case FilterTomorrow:
		return day(now.AddDate(0, 0, 1)), true
	case FilterWeek:
		return span(now.AddDate(0, 0, -7), now), true
	case FilterMonth:
		return span(now.AddDate(0, -1, 0), now), true
	case FilterYear:
		return span(now.AddDate(-1, 0, 0), now), true
	case FilterCustom:
		if custom.From == nil || custom.To == nil {
			return Interval{}, false
		}
		return span(*custom.From, *custom.To), true
	default:
		return Interval{}, false
	}
}

// StartOfDay returns 00:00:00.000 of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func day(t time.Time) Interval {
	return span(t, t)
}

func span(from, to time.Time) Interval {
	f := StartOfDay(from)
	e := EndOfDay(to)
	return Interval{From: &f, To: &e}
}
