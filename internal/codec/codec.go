// Package codec decodes and encodes term documents: a term, its courses and
// their rosters and gradebooks, written as nested tagged text.
package codec

import (
	"strconv"
	"strings"
	"time"

	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
	"github.com/noah-isme/sma-course-api/pkg/tagtext"
)

// DefaultDateLayout is the month/day/4-digit-year layout used by documents.
const DefaultDateLayout = "01/02/2006"

// lenientDateLayout also accepts single-digit months and days.
const lenientDateLayout = "1/2/2006"

// DateFormat controls how course dates are read and written.
type DateFormat struct {
	Layout   string
	Location *time.Location
}

// DefaultDateFormat returns the document date format in the local time zone.
func DefaultDateFormat() DateFormat {
	return DateFormat{Layout: DefaultDateLayout, Location: time.Local}
}

func (f DateFormat) layout() string {
	if f.Layout == "" {
		return DefaultDateLayout
	}
	return f.Layout
}

func (f DateFormat) location() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

// Parse reads a date in the configured layout and location.
func (f DateFormat) Parse(value string) (time.Time, error) {
	t, err := time.ParseInLocation(f.layout(), value, f.location())
	if err == nil {
		return t, nil
	}
	if f.layout() == DefaultDateLayout {
		if lenient, lerr := time.ParseInLocation(lenientDateLayout, value, f.location()); lerr == nil {
			return lenient, nil
		}
	}
	return time.Time{}, err
}

// Format writes a date in the configured layout and location.
func (f DateFormat) Format(t time.Time) string {
	return t.In(f.location()).Format(f.layout())
}

// Codec converts between term documents and the models tree. It holds no
// mutable state and is safe for concurrent use.
type Codec struct {
	dates DateFormat
}

// New builds a codec using the provided date format.
func New(dates DateFormat) *Codec {
	return &Codec{dates: dates}
}

// Dates exposes the codec's date format.
func (c *Codec) Dates() DateFormat {
	return c.dates
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".nN") {
		s += ".0"
	}
	return s
}

func requireInt(record, tag string) (int, error) {
	raw, ok := tagtext.Extract(record, tag)
	if !ok {
		return 0, appErrors.Malformed(nil, "missing <%s>", tag)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Malformed(err, "invalid <%s> value %q", tag, raw)
	}
	return v, nil
}

func requireFloat(record, tag string) (float64, error) {
	raw, ok := tagtext.Extract(record, tag)
	if !ok {
		return 0, appErrors.Malformed(nil, "missing <%s>", tag)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, appErrors.Malformed(err, "invalid <%s> value %q", tag, raw)
	}
	return v, nil
}

func (c *Codec) requireDate(record, tag string) (time.Time, error) {
	raw, ok := tagtext.Extract(record, tag)
	if !ok {
		return time.Time{}, appErrors.Malformed(nil, "missing <%s>", tag)
	}
	t, err := c.dates.Parse(raw)
	if err != nil {
		return time.Time{}, appErrors.Malformed(err, "unable to parse date %q in <%s>", raw, tag)
	}
	return t, nil
}

func field(record, tag string) string {
	v, _ := tagtext.Extract(record, tag)
	return v
}
