package report

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// maxSerial is 9999-12-31 in the 1900 date system.
const maxSerial = 2958465

// DD/MM/YYYY or DD-MM-YYYY with an optional HH[:MM[:SS]] part.
var customDateRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})(?:\s+(\d{1,2})(?::(\d{1,2})(?::(\d{1,2}))?)?)?$`)

// fallback layouts, tried in order
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
	"Mon Jan 2 2006 15:04:05 GMT-0700",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// TemporalParser turns heterogeneous cell values into instants.
// The zero value parses in time.Local with the 1900 date system.
type TemporalParser struct {
	loc      *time.Location
	date1904 bool
}

func NewTemporalParser(loc *time.Location) TemporalParser {
	return TemporalParser{loc: loc}
}

// With1904 returns a copy of p that reads serials in the 1904 date system.
func (p TemporalParser) With1904(date1904 bool) TemporalParser {
	p.date1904 = date1904
	return p
}

func (p TemporalParser) location() *time.Location {
	if p.loc == nil {
		return time.Local
	}
	return p.loc
}

// Parse converts a cell value into a time. It returns false when the value
// cannot be read as a date; it never panics.
func (p TemporalParser) Parse(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		return p.parseString(v)
	case float64:
		return p.parseSerial(v)
	case float32:
		return p.parseSerial(float64(v))
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return p.parseSerial(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return p.parseSerial(float64(rv.Uint()))
	}
	return time.Time{}, false
}

func (p TemporalParser) parseSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 || serial > maxSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, p.date1904)
	if err != nil {
		return time.Time{}, false
	}
	t = t.Round(time.Second)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, p.location()), true
}

func (p TemporalParser) parseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, ok := p.parseCustom(s); ok {
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, p.location()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseCustom reads day-first dates as written in the portal reports.
func (p TemporalParser) parseCustom(s string) (time.Time, bool) {
	m := customDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	num := func(i int) int {
		if m[i] == "" {
			return 0
		}
		n, _ := strconv.Atoi(m[i])
		return n
	}
	day, month, year := num(1), num(2), num(3)
	hour, minute, second := num(4), num(5), num(6)

	if day < 1 || day > 31 || month < 1 || month > 12 ||
		hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, p.location())
	// time.Date normalizes overflows (31/04 -> 01/05); reject those
	if t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return time.Time{}, false
	}
	return t, true
}
