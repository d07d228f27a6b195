package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
	"github.com/MarcosBaez42/automatizacion-sofia/core/report"
	emailsvc "github.com/MarcosBaez42/automatizacion-sofia/services/email"
	logsvc "github.com/MarcosBaez42/automatizacion-sofia/services/logger"
	testutil "github.com/MarcosBaez42/automatizacion-sofia/tests"
)

var pendingReport = [][]interface{}{
	{"Aprendiz", "Estado Calificación", "Fecha Calificación"},
	{"Ana", "Calificado", "15/03/2024"},
	{"Luis", "Pendiente", ""},
}

type jobFixture struct {
	app *app
	out *bytes.Buffer
	db  *sqlx.DB
}

func setup(t *testing.T) jobFixture {
	t.Helper()
	db := testutil.PrepareDB(t)

	conf := core.NewTestConfig()
	conf.Portal.InboxDir = t.TempDir()
	conf.Portal.OutputDir = t.TempDir()

	out := new(bytes.Buffer)
	a := &app{
		conf:   conf,
		out:    out,
		std:    log.New(io.Discard, "", 0),
		logger: logsvc.NewNopLogger(),
		db:     db,
	}
	return jobFixture{app: a, out: out, db: db}
}

func (fx jobFixture) execute(args ...string) error {
	cmd := newRootCmd(fx.app)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func (fx jobFixture) seedPending(t *testing.T) {
	t.Helper()
	ana := fiche.Instructor{ID: "i-ana", Name: "Ana Ruiz", Email: "ana@sena.edu.co"}
	testutil.SeedGroup(testutil.SQLCatalog(t, fx.db), "f-1", "2456789", ana, time.Now().AddDate(0, 0, -30), 2)
	testutil.WriteWorkbook(t, fx.app.conf.Portal.InboxDir, "juicios 2456789.xlsx", pendingReport)
}

func countLogs(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM processing_logs"))
	return n
}

func Test_run_dryRun(t *testing.T) {
	fx := setup(t)
	fx.seedPending(t)
	emailsvc.ResetSentMessages()

	require.NoError(t, fx.execute("run", "--dry-run"))

	var summary fiche.RunSummary
	require.NoError(t, json.Unmarshal(fx.out.Bytes(), &summary))
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 1, summary.Found)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Notified)

	s := testutil.FetchSchedule(t, fx.db, "f-1-s1")
	assert.Empty(t, s.GradeStatus)
	assert.False(t, s.Graded.Valid)
	assert.Equal(t, 0, countLogs(t, fx.db))
	assert.Empty(t, emailsvc.SentMessages)
}

func Test_run(t *testing.T) {
	fx := setup(t)
	fx.seedPending(t)
	emailsvc.ResetSentMessages()
	t.Cleanup(emailsvc.ResetSentMessages)

	require.NoError(t, fx.execute("run"))

	var summary fiche.RunSummary
	require.NoError(t, json.Unmarshal(fx.out.Bytes(), &summary))
	assert.Equal(t, 1, summary.Notified)

	for _, id := range []string{"f-1-s1", "f-1-s2"} {
		s := testutil.FetchSchedule(t, fx.db, id)
		assert.Equal(t, report.StatusPending, s.GradeStatus)
		assert.Equal(t, fiche.ProcessName, s.GradedByProcess)
	}
	assert.Equal(t, 1, countLogs(t, fx.db))
	require.Len(t, emailsvc.SentMessages, 1)
	assert.Equal(t, "ana@sena.edu.co", emailsvc.SentMessages[0].To[0].Address)

	staged := filepath.Join(fx.app.conf.Portal.OutputDir, "Reporte de Juicios Evaluativos 2456789.xlsx")
	assert.FileExists(t, staged)
}

func Test_run_nothingPending(t *testing.T) {
	fx := setup(t)

	require.NoError(t, fx.execute("run"))

	var summary fiche.RunSummary
	require.NoError(t, json.Unmarshal(fx.out.Bytes(), &summary))
	assert.Equal(t, 0, summary.Found)
	assert.Equal(t, 0, summary.Processed)
}

func Test_analyze(t *testing.T) {
	fx := setup(t)
	dir := t.TempDir()
	path := testutil.WriteWorkbook(t, dir, "graded.xlsx", [][]interface{}{
		{"Aprendiz", "Estado Calificación", "Fecha Calificación"},
		{"Ana", "Calificado", "15/03/2024 14:30:00"},
	})

	require.NoError(t, fx.execute("analyze", path))

	var decision report.Decision
	require.NoError(t, json.Unmarshal(fx.out.Bytes(), &decision))
	assert.True(t, decision.Graded)
	assert.Equal(t, report.StatusGraded, decision.StatusLabel)
	require.True(t, decision.GradeDate.Valid)
	want := time.Date(2024, 3, 15, 14, 30, 0, 0, fx.app.conf.Location())
	assert.True(t, decision.GradeDate.Time.Equal(want), "GradeDate = %v, want %v", decision.GradeDate.Time, want)
}

func Test_analyze_errors(t *testing.T) {
	fx := setup(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no file", []string{"analyze"}},
		{"missing file", []string{"analyze", filepath.Join(t.TempDir(), "nope.xlsx")}},
		{"unsupported format", []string{"analyze", filepath.Join(t.TempDir(), "report.pdf")}},
		{"unknown command", []string{"lol"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := fx.execute(tt.args...); err == nil {
				t.Errorf("Execute(%v) error = nil, want error", tt.args)
			}
		})
	}
}
