package property

import (
	"fmt"
	"math/bits"
	"strings"
)

// DateTimeFeature is a bit-set of calendar components extracted from a date.
type DateTimeFeature uint16

// Calendar components.
const (
	Year DateTimeFeature = 1 << iota
	DayOfYear
	Month
	Day
	DayOfWeek
	Hour
	Minute
	Second
	Millisecond

	// AllFeatures is the full-granularity default.
	AllFeatures = Year | DayOfYear | Month | Day | DayOfWeek | Hour | Minute | Second | Millisecond
)

var featureNames = []struct {
	f    DateTimeFeature
	name string
}{
	{Year, "year"},
	{DayOfYear, "dayofyear"},
	{Month, "month"},
	{Day, "day"},
	{DayOfWeek, "dayofweek"},
	{Hour, "hour"},
	{Minute, "minute"},
	{Second, "second"},
	{Millisecond, "millisecond"},
}

// Has reports whether every component of o is set in f.
func (f DateTimeFeature) Has(o DateTimeFeature) bool { return o != 0 && f&o == o }

// Count is the number of components set.
func (f DateTimeFeature) Count() int { return bits.OnesCount16(uint16(f)) }

// Valid reports whether f is non-empty and only names known components.
func (f DateTimeFeature) Valid() bool { return f != 0 && f&^AllFeatures == 0 }

// Names lists the set components in calendar order.
func (f DateTimeFeature) Names() []string {
	var out []string
	for _, fn := range featureNames {
		if f.Has(fn.f) {
			out = append(out, fn.name)
		}
	}
	return out
}

func (f DateTimeFeature) String() string {
	if f == 0 {
		return "none"
	}
	return strings.Join(f.Names(), "|")
}

// ParseDateTimeFeature parses a "|" or "," separated list such as "year|month|day".
func ParseDateTimeFeature(s string) (DateTimeFeature, error) {
	var f DateTimeFeature
	for _, part := range splitFlags(s) {
		if part == "all" {
			f |= AllFeatures
			continue
		}
		found := false
		for _, fn := range featureNames {
			if fn.name == part {
				f |= fn.f
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, part)
		}
	}
	return f, nil
}

// DatePortion is a named coarse group of calendar components.
type DatePortion uint8

// Named portions.
const (
	Date DatePortion = 1 << iota
	DateExtended
	Time
	TimeExtended
)

var portionNames = []struct {
	p    DatePortion
	name string
}{
	{Date, "date"},
	{DateExtended, "date-extended"},
	{Time, "time"},
	{TimeExtended, "time-extended"},
}

// Features resolves p into the calendar components it stands for.
func (p DatePortion) Features() DateTimeFeature {
	var f DateTimeFeature
	if p&Date != 0 {
		f |= Year | Month | Day
	}
	if p&DateExtended != 0 {
		f |= DayOfYear | DayOfWeek
	}
	if p&Time != 0 {
		f |= Hour | Minute
	}
	if p&TimeExtended != 0 {
		f |= Second | Millisecond
	}
	return f
}

// Valid reports whether p is non-empty and only names known portions.
func (p DatePortion) Valid() bool {
	return p != 0 && p&^(Date|DateExtended|Time|TimeExtended) == 0
}

func (p DatePortion) String() string {
	var parts []string
	for _, pn := range portionNames {
		if p&pn.p != 0 {
			parts = append(parts, pn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseDatePortion parses names such as "date", "time" or "date|time-extended".
func ParseDatePortion(s string) (DatePortion, error) {
	var p DatePortion
	for _, part := range splitFlags(s) {
		found := false
		for _, pn := range portionNames {
			if pn.name == part || strings.ReplaceAll(pn.name, "-", "") == part {
				p |= pn.p
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", ErrUnknownPortion, part)
		}
	}
	return p, nil
}

func splitFlags(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})
	return fields
}

// DateTime is a date/time field decomposed into calendar components.
type DateTime struct {
	header
	features DateTimeFeature
	portion  DatePortion
}

// NewDateTime returns a descriptor extracting an explicit set of components.
func NewDateTime(h Header, features DateTimeFeature) *DateTime {
	return &DateTime{header: newHeader(h), features: features}
}

// NewDatePortion returns a descriptor extracting a named portion.
func NewDatePortion(h Header, portion DatePortion) *DateTime {
	return &DateTime{header: newHeader(h), features: portion.Features(), portion: portion}
}

// Kind implements Property.
func (*DateTime) Kind() Kind { return KindDateTime }

// Features is the resolved set of calendar components.
func (d *DateTime) Features() DateTimeFeature { return d.features }

// Portion is the named portion the descriptor was built from, or zero when
// the components were given explicitly.
func (d *DateTime) Portion() DatePortion { return d.portion }
