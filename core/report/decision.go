package report

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
)

// Status labels stored on schedules and audit records.
const (
	StatusEmptyReport = "Reporte sin información"
	StatusGraded      = "Calificado"
	StatusPending     = "Pendiente de Calificación"
	StatusNoInfo      = "Sin información de calificación"
)

// Decision is the grading verdict inferred from one report.
type Decision struct {
	Graded          bool      `json:"graded"`
	StatusLabel     string    `json:"statusLabel"`
	GradeDate       null.Time `json:"gradeDate"`
	QualifiableDate null.Time `json:"qualifiableDate"`

	Columns     Columns `json:"columns"`
	GradedRows  int     `json:"gradedRows"`
	PendingRows int     `json:"pendingRows"`
}

// Analyzer infers grading decisions from report tables.
type Analyzer struct {
	loc    *time.Location
	logger core.Logger
}

func NewAnalyzer(loc *time.Location, logger core.Logger) *Analyzer {
	return &Analyzer{loc: loc, logger: logger}
}

// AnalyzeFile reads the report at path and decides on it.
func (a *Analyzer) AnalyzeFile(path string) (Decision, error) {
	tbl, err := ReadTable(path)
	if err != nil {
		return Decision{}, errors.Wrap(err, "reading report")
	}
	return a.Decide(tbl), nil
}

// Decide infers the grading decision of a report table. Row 0 is the header row.
func (a *Analyzer) Decide(tbl Table) Decision {
	if len(tbl.Rows) == 0 {
		return Decision{
			StatusLabel: StatusEmptyReport,
			Columns:     Columns{Status: NotFound, GradeDate: NotFound},
		}
	}

	parser := NewTemporalParser(a.loc).With1904(tbl.Date1904)
	cols := ResolveColumns(HeaderTexts(tbl.Rows[0]))
	rows := Classify(tbl.Rows, cols.Status)

	d := Decision{
		Graded:      len(rows.Graded) > 0 && len(rows.Pending) == 0,
		Columns:     cols,
		GradedRows:  len(rows.Graded),
		PendingRows: len(rows.Pending),
	}

	if d.Graded && cols.GradeDate != NotFound {
		var dates []time.Time
		for _, r := range rows.Graded {
			if t, ok := parser.Parse(r.Row.Cell(cols.GradeDate)); ok {
				dates = append(dates, t)
			}
		}
		d.GradeDate = latest(dates)
	}

	var qualifiable []time.Time
	for _, r := range tbl.Rows[1:] {
		for _, idx := range cols.Qualifiable {
			if t, ok := parser.Parse(r.Cell(idx)); ok {
				qualifiable = append(qualifiable, t)
			}
		}
	}
	d.QualifiableDate = latest(qualifiable)

	switch {
	case d.Graded:
		d.StatusLabel = StatusGraded
	case d.PendingRows > 0:
		d.StatusLabel = StatusPending
	default:
		d.StatusLabel = StatusNoInfo
	}

	if a.logger != nil {
		a.logger.Debug("report decision: "+d.StatusLabel, map[string]interface{}{
			"sheet":           tbl.Sheet,
			"gradedRows":      d.GradedRows,
			"pendingRows":     d.PendingRows,
			"gradeDate":       d.GradeDate,
			"qualifiableDate": d.QualifiableDate,
		})
	}
	return d
}

func latest(ts []time.Time) null.Time {
	var max null.Time
	for _, t := range ts {
		if !max.Valid || t.After(max.Time) {
			max = null.TimeFrom(t)
		}
	}
	return max
}
