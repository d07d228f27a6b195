package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyReport       = errors.New("el reporte no contiene hojas para procesar")
	ErrUnsupportedFormat = errors.New("formato de reporte no soportado")
)

// Row is one report row. Cells are nil, string, float64, bool or time.Time.
type Row []interface{}

// Cell returns the cell at idx, or nil when idx is out of range.
func (r Row) Cell(idx int) interface{} {
	if idx < 0 || idx >= len(r) {
		return nil
	}
	return r[idx]
}

// Table is the content of the first sheet of a report.
type Table struct {
	Sheet    string
	Rows     []Row
	Date1904 bool
}

// ReadTable loads a report from an .xlsx workbook or a .csv file.
func ReadTable(path string) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return Table{}, errors.Wrapf(err, "opening %s", filepath.Base(path))
		}
		defer f.Close()
		return readWorkbook(f)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return Table{}, errors.Wrapf(err, "opening %s", filepath.Base(path))
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return Table{}, errors.Wrap(ErrUnsupportedFormat, filepath.Base(path))
	}
}

// ReadWorkbook loads the first sheet of a workbook stream.
func ReadWorkbook(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) (Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, ErrEmptyReport
	}
	tbl := Table{Sheet: sheets[0]}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		tbl.Date1904 = *props.Date1904
	}

	raw, err := f.GetRows(tbl.Sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, errors.Wrapf(err, "reading sheet %q", tbl.Sheet)
	}
	tbl.Rows = make([]Row, len(raw))
	for r, cells := range raw {
		row := make(Row, len(cells))
		for c, value := range cells {
			if value == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return Table{}, errors.Wrap(err, "resolving cell")
			}
			typ, err := f.GetCellType(tbl.Sheet, axis)
			if err != nil {
				return Table{}, errors.Wrapf(err, "reading cell %s", axis)
			}
			row[c] = typedCell(value, typ)
		}
		tbl.Rows[r] = row
	}
	return tbl, nil
}

func typedCell(value string, typ excelize.CellType) interface{} {
	switch typ {
	case excelize.CellTypeBool:
		return value == "1" || strings.EqualFold(value, "true")
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, value); err == nil {
				return t
			}
		}
		return value
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return value
	default:
		return value
	}
}

// ReadCSV loads a comma or semicolon separated report. Every cell is text.
func ReadCSV(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, errors.Wrap(err, "reading csv")
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, errors.Wrap(err, "parsing csv")
	}
	tbl := Table{Sheet: "csv", Rows: make([]Row, len(records))}
	for i, rec := range records {
		row := make(Row, len(rec))
		for j, v := range rec {
			if v != "" {
				row[j] = v
			}
		}
		tbl.Rows[i] = row
	}
	return tbl, nil
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
