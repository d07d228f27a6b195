package report

import "strings"

// RowClass is the grading class of a single report row.
type RowClass int

const (
	Ignored RowClass = iota
	Pending
	Graded
)

func (c RowClass) String() string {
	switch c {
	case Pending:
		return "pending"
	case Graded:
		return "graded"
	default:
		return "ignored"
	}
}

type (
	ClassifiedRow struct {
		Row    Row
		Status interface{} // raw status cell
		Class  RowClass
	}

	Classification struct {
		Graded  []ClassifiedRow
		Pending []ClassifiedRow
	}
)

// ClassifyStatus maps a normalized status text to a row class.
// Pending wins over graded: "sin calificar" contains "calific".
func ClassifyStatus(status string) RowClass {
	switch {
	case status == "":
		return Ignored
	case strings.Contains(status, "sin calific"), strings.Contains(status, "pendiente"):
		return Pending
	case strings.Contains(status, "calific"), strings.Contains(status, "aprob"):
		return Graded
	default:
		return Ignored
	}
}

// Classify buckets the data rows (every row after the header) by their status cell.
func Classify(rows []Row, statusIdx int) Classification {
	var c Classification
	for i := 1; i < len(rows); i++ {
		status := rows[i].Cell(statusIdx)
		cr := ClassifiedRow{Row: rows[i], Status: status, Class: ClassifyStatus(Normalize(status))}
		switch cr.Class {
		case Graded:
			c.Graded = append(c.Graded, cr)
		case Pending:
			c.Pending = append(c.Pending, cr)
		}
	}
	return c
}
