package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
	"github.com/MarcosBaez42/automatizacion-sofia/storage/database"
)

// Catalog stores instructors, fiches and schedules for tests.
type Catalog interface {
	AddInstructor(i fiche.Instructor)
	AddFiche(f fiche.Fiche)
	AddSchedule(s fiche.Schedule)
}

// PrepareDB opens a migrated in-memory sqlite database, closed at test cleanup.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conf := core.NewTestConfig()
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err = database.Migrate(context.Background(), db, conf.Database.Engine); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

type sqlCatalog struct {
	t  *testing.T
	db *sqlx.DB
}

// SQLCatalog inserts catalog rows straight into db.
func SQLCatalog(t *testing.T, db *sqlx.DB) Catalog {
	return &sqlCatalog{t: t, db: db}
}

func (c *sqlCatalog) exec(q string, args ...interface{}) {
	c.t.Helper()
	if _, err := c.db.Exec(c.db.Rebind(q), args...); err != nil {
		c.t.Fatalf("seeding failed: %v", err)
	}
}

func nullString(s string) null.String { return null.NewString(s, s != "") }

func (c *sqlCatalog) AddInstructor(i fiche.Instructor) {
	c.t.Helper()
	c.exec("INSERT INTO instructors (id, name, email, personal_email) VALUES (?, ?, ?, ?)",
		i.ID, nullString(i.Name), nullString(i.Email), nullString(i.PersonalEmail))
}

func (c *sqlCatalog) AddFiche(f fiche.Fiche) {
	c.t.Helper()
	c.exec("INSERT INTO fiches (id, number, program_name, owner_id) VALUES (?, ?, ?, ?)",
		f.ID, f.Number, nullString(f.ProgramName), nullString(f.OwnerID))
}

func (c *sqlCatalog) AddSchedule(s fiche.Schedule) {
	c.t.Helper()
	c.exec(`INSERT INTO schedules (id, fiche_id, ends_at, graded, gradable, qualifiable_date, grade_date, grade_status, graded_by_process)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.FicheID, s.EndsAt.UTC(), s.Graded, s.Gradable,
		utc(s.QualifiableDate), utc(s.GradeDate), nullString(s.GradeStatus), nullString(s.GradedByProcess))
}

func utc(t null.Time) null.Time {
	if t.Valid {
		t.Time = t.Time.UTC()
	}
	return t
}

// FetchSchedule reads back a schedule after the code under test updated it.
func FetchSchedule(t *testing.T, db *sqlx.DB, id string) fiche.Schedule {
	t.Helper()
	var row struct {
		ID              string      `db:"id"`
		FicheID         string      `db:"fiche_id"`
		EndsAt          time.Time   `db:"ends_at"`
		Graded          null.Bool   `db:"graded"`
		Gradable        null.Bool   `db:"gradable"`
		QualifiableDate null.Time   `db:"qualifiable_date"`
		GradeDate       null.Time   `db:"grade_date"`
		GradeStatus     null.String `db:"grade_status"`
		GradedByProcess null.String `db:"graded_by_process"`
	}
	q := db.Rebind(`SELECT id, fiche_id, ends_at, graded, gradable, qualifiable_date, grade_date, grade_status, graded_by_process
FROM schedules WHERE id = ?`)
	if err := db.Get(&row, q, id); err != nil {
		t.Fatalf("FetchSchedule() failed: %v", err)
	}
	return fiche.Schedule{
		ID:              row.ID,
		FicheID:         row.FicheID,
		EndsAt:          row.EndsAt,
		Graded:          row.Graded,
		Gradable:        row.Gradable,
		QualifiableDate: row.QualifiableDate,
		GradeDate:       row.GradeDate,
		GradeStatus:     row.GradeStatus.String,
		GradedByProcess: row.GradedByProcess.String,
	}
}

// SeedGroup stores an instructor, a fiche owned by it and n schedules that ended at endsAt.
// Schedule ids are "<ficheID>-s<k>".
func SeedGroup(c Catalog, ficheID, number string, instructor fiche.Instructor, endsAt time.Time, n int) fiche.ScheduleGroup {
	if instructor.ID != "" {
		c.AddInstructor(instructor)
	}
	c.AddFiche(fiche.Fiche{ID: ficheID, Number: number, ProgramName: "ADSO", OwnerID: instructor.ID})

	g := fiche.ScheduleGroup{
		FicheID:                 ficheID,
		FicheNumber:             number,
		ProgramName:             "ADSO",
		InstructorID:            instructor.ID,
		InstructorName:          instructor.Name,
		InstructorEmail:         instructor.Email,
		InstructorPersonalEmail: instructor.PersonalEmail,
	}
	for k := 1; k <= n; k++ {
		id := fmt.Sprintf("%s-s%d", ficheID, k)
		c.AddSchedule(fiche.Schedule{ID: id, FicheID: ficheID, EndsAt: endsAt})
		g.ScheduleIDs = append(g.ScheduleIDs, id)
	}
	return g
}

// WriteWorkbook saves rows into the first sheet of a new workbook in dir and returns its path.
func WriteWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("WriteWorkbook() failed: %v", err)
		}
		if err = f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			t.Fatalf("WriteWorkbook() failed: %v", err)
		}
	}
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("WriteWorkbook() failed: %v", err)
	}
	return path
}
