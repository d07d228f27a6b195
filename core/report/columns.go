package report

import (
	"fmt"
	"strconv"
	"strings"
)

// NotFound is the index returned when no header matches.
const NotFound = -1

// ColumnRole is the semantic purpose of a report column.
type ColumnRole int

const (
	RoleStatus ColumnRole = iota + 1
	RoleGradeDate
	RoleQualifiableDate
)

func (r ColumnRole) String() string {
	switch r {
	case RoleStatus:
		return "status"
	case RoleGradeDate:
		return "grade_date"
	case RoleQualifiableDate:
		return "qualifiable_date"
	default:
		return "unknown"
	}
}

// HeaderPredicate is evaluated against normalized header text.
type HeaderPredicate func(header string) bool

// Contains matches headers that contain every word.
func Contains(words ...string) HeaderPredicate {
	return func(header string) bool {
		for _, w := range words {
			if !strings.Contains(header, w) {
				return false
			}
		}
		return true
	}
}

var (
	statusCascade = []HeaderPredicate{
		Contains("estado", "calific"),
		Contains("estado", "juicio"),
		Contains("estado"),
	}
	gradeDateCascade = []HeaderPredicate{
		Contains("fecha", "calific"),
		Contains("fecha"),
	}
	qualifiableDate = Contains("fecha", "calificable")
)

// Columns holds the resolved column indexes of a report.
type Columns struct {
	Status      int   `json:"status"`
	GradeDate   int   `json:"gradeDate"`
	Qualifiable []int `json:"qualifiable"`
}

// Index returns the first column resolved for role, or NotFound.
func (c Columns) Index(role ColumnRole) int {
	switch role {
	case RoleStatus:
		return c.Status
	case RoleGradeDate:
		return c.GradeDate
	case RoleQualifiableDate:
		if len(c.Qualifiable) > 0 {
			return c.Qualifiable[0]
		}
	}
	return NotFound
}

// FindColumn returns the index of the first non-empty header satisfying pred.
func FindColumn(headers []string, pred HeaderPredicate) int {
	for i, h := range headers {
		if h == "" {
			continue
		}
		if pred(Normalize(h)) {
			return i
		}
	}
	return NotFound
}

// FindColumns returns the indexes of all non-empty headers satisfying pred, left to right.
func FindColumns(headers []string, pred HeaderPredicate) []int {
	var idxs []int
	for i, h := range headers {
		if h == "" {
			continue
		}
		if pred(Normalize(h)) {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// FindFirstColumn tries each predicate in priority order; the first match wins.
func FindFirstColumn(headers []string, preds ...HeaderPredicate) int {
	for _, pred := range preds {
		if idx := FindColumn(headers, pred); idx != NotFound {
			return idx
		}
	}
	return NotFound
}

// ResolveColumns locates the status, grade date and qualifiable date columns.
func ResolveColumns(headers []string) Columns {
	return Columns{
		Status:      FindFirstColumn(headers, statusCascade...),
		GradeDate:   FindFirstColumn(headers, gradeDateCascade...),
		Qualifiable: FindColumns(headers, qualifiableDate),
	}
}

// HeaderTexts converts the header row into strings; empty cells become "".
func HeaderTexts(row Row) []string {
	headers := make([]string, len(row))
	for i, cell := range row {
		switch v := cell.(type) {
		case nil:
		case string:
			headers[i] = v
		case float64:
			headers[i] = formatNumber(v)
		default:
			headers[i] = fmt.Sprint(v)
		}
	}
	return headers
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
