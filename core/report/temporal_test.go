package report

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bogota(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	return loc
}

func TestTemporalParser_Custom(t *testing.T) {
	loc := bogota(t)
	p := NewTemporalParser(loc)

	tests := []struct {
		name  string
		value string
		want  time.Time
		ok    bool
	}{
		{"date", "15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, loc), true},
		{"dashes", "5-3-2024", time.Date(2024, 3, 5, 0, 0, 0, 0, loc), true},
		{"hour", "15/03/2024 7", time.Date(2024, 3, 15, 7, 0, 0, 0, loc), true},
		{"minutes", "15/03/2024 07:30", time.Date(2024, 3, 15, 7, 30, 0, 0, loc), true},
		{"full", "15/03/2024 23:59:58", time.Date(2024, 3, 15, 23, 59, 58, 0, loc), true},
		{"padded", "  01/12/2023  ", time.Date(2023, 12, 1, 0, 0, 0, 0, loc), true},
		{"leap day", "29/02/2024", time.Date(2024, 2, 29, 0, 0, 0, 0, loc), true},
		{"april 31", "31/04/2024", time.Time{}, false},
		{"no leap day", "29/02/2023", time.Time{}, false},
		{"day 32", "32/01/2024", time.Time{}, false},
		{"month first fallback", "12/31/2024", time.Date(2024, 12, 31, 0, 0, 0, 0, loc), true},
		{"day 0", "00/01/2024", time.Time{}, false},
		{"hour 24", "01/01/2024 24:00", time.Time{}, false},
		{"minute 60", "01/01/2024 10:60", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"blank", "   ", time.Time{}, false},
		{"garbage", "mañana", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Parse(tt.value)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.value, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestTemporalParser_RoundTrip(t *testing.T) {
	loc := bogota(t)
	p := NewTemporalParser(loc)
	in := time.Date(2024, 11, 7, 18, 4, 9, 0, loc)

	got, ok := p.Parse(in.Format("02/01/2006 15:04:05"))
	require.True(t, ok)
	assert.True(t, got.Equal(in), "got %v want %v", got, in)
	assert.Equal(t, loc, got.Location())
}

func TestTemporalParser_Fallback(t *testing.T) {
	loc := bogota(t)
	p := NewTemporalParser(loc)

	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"rfc3339", "2024-03-15T10:00:00Z", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)},
		{"offset", "2024-03-15T10:00:00-05:00", time.Date(2024, 3, 15, 10, 0, 0, 0, loc)},
		{"iso local", "2024-03-15T10:00:00", time.Date(2024, 3, 15, 10, 0, 0, 0, loc)},
		{"iso space", "2024-03-15 10:00", time.Date(2024, 3, 15, 10, 0, 0, 0, loc)},
		{"iso date", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
		{"slashed iso", "2024/03/15", time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
		{"month name", "Mar 15, 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Parse(tt.value)
			require.True(t, ok, "Parse(%q)", tt.value)
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestTemporalParser_Serial(t *testing.T) {
	loc := bogota(t)
	p := NewTemporalParser(loc)

	got, ok := p.Parse(45000.0)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, loc), got)

	got, ok = p.Parse(45000.5)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 3, 15, 12, 0, 0, 0, loc), got)

	got, ok = p.Parse(45000)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, loc), got)

	got, ok = p.With1904(true).Parse(45000.0 - 1462)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, loc), got)

	for _, v := range []interface{}{0.0, -1.0, math.NaN(), math.Inf(1), float64(maxSerial + 1), 0} {
		if _, ok := p.Parse(v); ok {
			t.Errorf("Parse(%v) ok = true, want false", v)
		}
	}
}

func TestTemporalParser_Types(t *testing.T) {
	p := NewTemporalParser(bogota(t))
	now := time.Now()

	got, ok := p.Parse(now)
	require.True(t, ok)
	assert.True(t, got.Equal(now))

	got, ok = p.Parse(&now)
	require.True(t, ok)
	assert.True(t, got.Equal(now))

	for _, v := range []interface{}{nil, time.Time{}, (*time.Time)(nil), true, []int{1}, struct{}{}} {
		if _, ok := p.Parse(v); ok {
			t.Errorf("Parse(%#v) ok = true, want false", v)
		}
	}
}
