package sqlxrepos

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
)

const logColumns = `id, fiche_id, fiche_number, instructor_id, instructor_name, instructor_email,
schedule_ids, schedule_count, graded, grade_status, grade_date, qualifiable, qualifiable_date,
report_file, result, error_message, notification_sent_at, processed_at`

type (
	logRepository struct {
		exec core.DBExecutor
	}

	logRow struct {
		ID                 string      `db:"id"`
		FicheID            string      `db:"fiche_id"`
		FicheNumber        string      `db:"fiche_number"`
		InstructorID       null.String `db:"instructor_id"`
		InstructorName     null.String `db:"instructor_name"`
		InstructorEmail    null.String `db:"instructor_email"`
		ScheduleIDs        string      `db:"schedule_ids"`
		ScheduleCount      int         `db:"schedule_count"`
		Graded             bool        `db:"graded"`
		GradeStatus        string      `db:"grade_status"`
		GradeDate          null.Time   `db:"grade_date"`
		Qualifiable        bool        `db:"qualifiable"`
		QualifiableDate    null.Time   `db:"qualifiable_date"`
		ReportFile         string      `db:"report_file"`
		Result             string      `db:"result"`
		ErrorMessage       null.String `db:"error_message"`
		NotificationSentAt null.Time   `db:"notification_sent_at"`
		ProcessedAt        time.Time   `db:"processed_at"`
	}
)

var _ fiche.LogRepository = (*logRepository)(nil) // interface compliance check

func NewLogRepository(exec core.DBExecutor) *logRepository {
	return &logRepository{exec: exec}
}

func nullString(s string) null.String { return null.NewString(s, s != "") }

func utc(t null.Time) null.Time {
	if t.Valid {
		t.Time = t.Time.UTC()
	}
	return t
}

func (repo logRepository) toRow(l fiche.ProcessingLog) (logRow, error) {
	ids := l.ScheduleIDs
	if ids == nil {
		ids = []string{}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return logRow{}, err
	}
	return logRow{
		ID:                 l.ID,
		FicheID:            l.FicheID,
		FicheNumber:        l.FicheNumber,
		InstructorID:       nullString(l.InstructorID),
		InstructorName:     nullString(l.InstructorName),
		InstructorEmail:    nullString(l.InstructorEmail),
		ScheduleIDs:        string(idsJSON),
		ScheduleCount:      l.ScheduleCount,
		Graded:             l.Graded,
		GradeStatus:        l.GradeStatus,
		GradeDate:          utc(l.GradeDate),
		Qualifiable:        l.Qualifiable,
		QualifiableDate:    utc(l.QualifiableDate),
		ReportFile:         l.ReportFile,
		Result:             l.Result,
		ErrorMessage:       nullString(l.ErrorMessage),
		NotificationSentAt: utc(l.NotificationSentAt),
		ProcessedAt:        l.ProcessedAt.UTC(),
	}, nil
}

func (repo logRepository) fromRow(r logRow) (fiche.ProcessingLog, error) {
	var ids []string
	if err := json.Unmarshal([]byte(r.ScheduleIDs), &ids); err != nil {
		return fiche.ProcessingLog{}, errors.Wrapf(err, "decoding schedule ids of log %s", r.ID)
	}
	return fiche.ProcessingLog{
		ID:                 r.ID,
		FicheID:            r.FicheID,
		FicheNumber:        r.FicheNumber,
		InstructorID:       r.InstructorID.String,
		InstructorName:     r.InstructorName.String,
		InstructorEmail:    r.InstructorEmail.String,
		ScheduleIDs:        ids,
		ScheduleCount:      r.ScheduleCount,
		Graded:             r.Graded,
		GradeStatus:        r.GradeStatus,
		GradeDate:          r.GradeDate,
		Qualifiable:        r.Qualifiable,
		QualifiableDate:    r.QualifiableDate,
		ReportFile:         r.ReportFile,
		Result:             r.Result,
		ErrorMessage:       r.ErrorMessage.String,
		NotificationSentAt: r.NotificationSentAt,
		ProcessedAt:        r.ProcessedAt,
	}, nil
}

func (repo logRepository) CreateLog(ctx context.Context, l fiche.ProcessingLog) (fiche.ProcessingLog, error) {
	l.ID = uuid.New().String()
	if l.ProcessedAt.IsZero() {
		l.ProcessedAt = time.Now().UTC()
	}
	row, err := repo.toRow(l)
	if err != nil {
		return fiche.ProcessingLog{}, errors.Wrap(err, "encoding processing log")
	}

	q, args, err := sqlx.Named(`INSERT INTO processing_logs (`+logColumns+`) VALUES (
:id, :fiche_id, :fiche_number, :instructor_id, :instructor_name, :instructor_email,
:schedule_ids, :schedule_count, :graded, :grade_status, :grade_date, :qualifiable, :qualifiable_date,
:report_file, :result, :error_message, :notification_sent_at, :processed_at)`, row)
	if err != nil {
		return fiche.ProcessingLog{}, errors.Wrap(err, "building processing log insert")
	}
	if _, err = repo.exec.ExecContext(ctx, repo.exec.Rebind(q), args...); err != nil {
		return fiche.ProcessingLog{}, errors.Wrap(err, "inserting processing log")
	}
	return l, nil
}

// likePrefix escapes LIKE wildcards in s and appends "%".
func likePrefix(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s) + "%"
}

func (repo logRepository) QueryNotificationLogs(ctx context.Context, filter fiche.NotificationFilter) ([]fiche.ProcessingLog, error) {
	q := `SELECT ` + logColumns + ` FROM processing_logs WHERE (notification_sent_at IS NOT NULL OR result = ?)`
	args := []interface{}{fiche.ResultNotified}
	if filter.FicheNumber != "" {
		q += ` AND LOWER(fiche_number) LIKE LOWER(?) ESCAPE '\'`
		args = append(args, likePrefix(filter.FicheNumber))
	}
	q += ` ORDER BY (notification_sent_at IS NULL), notification_sent_at DESC, processed_at DESC`

	var rows []logRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, repo.exec.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting notification logs")
	}
	logs := make([]fiche.ProcessingLog, 0, len(rows))
	for _, r := range rows {
		l, err := repo.fromRow(r)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}
