package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
	testutil "github.com/MarcosBaez42/automatizacion-sofia/tests"
)

func TestLogRepository_CreateLog(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := NewLogRepository(db)
	ctx := context.Background()

	processed := time.Date(2024, 3, 20, 13, 0, 0, 0, time.UTC)
	in := fiche.ProcessingLog{
		FicheID:            "f-1",
		FicheNumber:        "2758954",
		InstructorID:       "i-ana",
		InstructorName:     "Ana",
		InstructorEmail:    "ana@sena.edu.co",
		ScheduleIDs:        []string{"s1", "s2"},
		ScheduleCount:      2,
		GradeStatus:        "Pendiente de Calificación",
		Qualifiable:        true,
		QualifiableDate:    null.TimeFrom(time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC)),
		ReportFile:         "reporte 2758954.xlsx",
		Result:             fiche.ResultNotified,
		NotificationSentAt: null.TimeFrom(processed),
		ProcessedAt:        processed,
	}
	created, err := repo.CreateLog(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	logs, err := repo.QueryNotificationLogs(ctx, fiche.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	got := logs[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, []string{"s1", "s2"}, got.ScheduleIDs)
	assert.Equal(t, "ana@sena.edu.co", got.InstructorEmail)
	assert.True(t, got.ProcessedAt.Equal(processed))
	assert.True(t, got.QualifiableDate.Valid)
	assert.False(t, got.GradeDate.Valid)
	assert.Empty(t, got.ErrorMessage)
}

func TestLogRepository_QueryNotificationLogs(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := NewLogRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 3, 20, 13, 0, 0, 0, time.UTC)

	create := func(number, result string, sentAt null.Time, processed time.Time) {
		_, err := repo.CreateLog(ctx, fiche.ProcessingLog{
			FicheID:            "f-" + number,
			FicheNumber:        number,
			GradeStatus:        "Pendiente de Calificación",
			Result:             result,
			NotificationSentAt: sentAt,
			ProcessedAt:        processed,
		})
		require.NoError(t, err)
	}
	create("2758954", fiche.ResultNotified, null.TimeFrom(base), base)
	create("2758999", fiche.ResultNotified, null.TimeFrom(base.Add(time.Hour)), base.Add(time.Hour))
	create("1111111", fiche.ResultNotified, null.Time{}, base.Add(2*time.Hour)) // failed after notifying
	create("2222222", fiche.ResultGraded, null.Time{}, base)
	create("3333333", fiche.ResultDeferred, null.Time{}, base)

	tests := []struct {
		name   string
		filter fiche.NotificationFilter
		want   []string
	}{
		{"all", fiche.NotificationFilter{}, []string{"2758999", "2758954", "1111111"}},
		{"prefix", fiche.NotificationFilter{FicheNumber: "27589"}, []string{"2758999", "2758954"}},
		{"exact", fiche.NotificationFilter{FicheNumber: "2758954"}, []string{"2758954"}},
		{"wildcard is literal", fiche.NotificationFilter{FicheNumber: "%"}, nil},
		{"no match", fiche.NotificationFilter{FicheNumber: "9"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs, err := repo.QueryNotificationLogs(ctx, tt.filter)
			require.NoError(t, err)
			var got []string
			for _, l := range logs {
				got = append(got, l.FicheNumber)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLikePrefix(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2758", "2758%"},
		{"50%", `50\%%`},
		{"a_b", `a\_b%`},
		{`a\b`, `a\\b%`},
	}
	for _, tt := range tests {
		if got := likePrefix(tt.in); got != tt.want {
			t.Errorf("likePrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
