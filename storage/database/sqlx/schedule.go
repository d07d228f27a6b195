package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
)

const pendingGroupsQuery = `
SELECT s.id AS schedule_id,
       f.id AS fiche_id,
       f.number AS fiche_number,
       COALESCE(f.program_name, '') AS program_name,
       COALESCE(i.id, '') AS instructor_id,
       COALESCE(i.name, '') AS instructor_name,
       COALESCE(i.email, '') AS instructor_email,
       COALESCE(i.personal_email, '') AS instructor_personal_email
FROM schedules s
JOIN fiches f ON f.id = s.fiche_id
LEFT JOIN instructors i ON i.id = f.owner_id
WHERE s.ends_at < ?
  AND (s.graded IS NULL OR s.graded = FALSE)
  AND (s.gradable IS NULL OR s.gradable = TRUE)
ORDER BY f.number, f.id, s.id`

const markSchedulesQuery = `
UPDATE schedules
SET graded = ?, gradable = ?, grade_date = ?, grade_status = ?, graded_by_process = ?,
    qualifiable_date = NULL, updated_at = ?
WHERE id IN (?)`

type (
	scheduleRepository struct {
		exec core.DBExecutor
	}

	pendingRow struct {
		ScheduleID string `db:"schedule_id"`
		fiche.ScheduleGroup
	}
)

var (
	_ fiche.ScheduleRepository    = (*scheduleRepository)(nil) // interface compliance check
	_ fiche.MaintenanceRepository = (*scheduleRepository)(nil)
)

func NewScheduleRepository(exec core.DBExecutor) *scheduleRepository {
	return &scheduleRepository{exec: exec}
}

func (repo scheduleRepository) PendingGroups(ctx context.Context, cutoff time.Time) ([]fiche.ScheduleGroup, error) {
	var rows []pendingRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, repo.exec.Rebind(pendingGroupsQuery), cutoff.UTC()); err != nil {
		return nil, errors.Wrap(err, "selecting pending schedules")
	}

	groups := make([]fiche.ScheduleGroup, 0)
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.FicheID]
		if !ok {
			i = len(groups)
			index[r.FicheID] = i
			groups = append(groups, r.ScheduleGroup)
		}
		groups[i].ScheduleIDs = append(groups[i].ScheduleIDs, r.ScheduleID)
	}
	return groups, nil
}

func (repo scheduleRepository) mark(ctx context.Context, ids []string, graded, gradable bool, upd fiche.GradeUpdate) error {
	if len(ids) == 0 {
		return nil
	}
	gradeDate := upd.GradeDate
	if gradeDate.Valid {
		gradeDate.Time = gradeDate.Time.UTC()
	}
	q, args, err := sqlx.In(markSchedulesQuery,
		graded, gradable, gradeDate, null.NewString(upd.StatusLabel, upd.StatusLabel != ""),
		upd.Process, time.Now().UTC(), ids)
	if err != nil {
		return errors.Wrap(err, "building schedules update")
	}
	if _, err = repo.exec.ExecContext(ctx, repo.exec.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "updating schedules")
	}
	return nil
}

func (repo scheduleRepository) MarkGraded(ctx context.Context, ids []string, upd fiche.GradeUpdate) error {
	return repo.mark(ctx, ids, true, true, upd)
}

func (repo scheduleRepository) MarkPending(ctx context.Context, ids []string, upd fiche.GradeUpdate, qualifiableFuture bool) error {
	return repo.mark(ctx, ids, false, !qualifiableFuture, upd)
}

func (repo scheduleRepository) InitGradedFlags(ctx context.Context) (int64, error) {
	q := repo.exec.Rebind("UPDATE schedules SET graded = FALSE, updated_at = ? WHERE graded IS NULL")
	res, err := repo.exec.ExecContext(ctx, q, time.Now().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "updating graded flags")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "counting updated schedules")
}

func (repo scheduleRepository) GradedTotals(ctx context.Context) (fiche.GradedTotals, error) {
	const q = `
SELECT COUNT(*) AS total,
       COALESCE(SUM(CASE WHEN graded = FALSE THEN 1 ELSE 0 END), 0) AS pending,
       COALESCE(SUM(CASE WHEN graded = TRUE THEN 1 ELSE 0 END), 0) AS graded
FROM schedules`
	var totals fiche.GradedTotals
	if err := sqlx.GetContext(ctx, repo.exec, &totals, q); err != nil {
		return totals, errors.Wrap(err, "counting schedules")
	}
	return totals, nil
}

func (repo scheduleRepository) UngradedSamples(ctx context.Context, limit int) ([]fiche.UngradedSample, error) {
	const q = `
SELECT s.id AS schedule_id,
       COALESCE(f.number, '') AS fiche_number,
       COALESCE(f.program_name, '') AS program_name
FROM schedules s
LEFT JOIN fiches f ON f.id = s.fiche_id
WHERE s.graded = FALSE
ORDER BY s.id
LIMIT ?`
	samples := make([]fiche.UngradedSample, 0, limit)
	if err := sqlx.SelectContext(ctx, repo.exec, &samples, repo.exec.Rebind(q), limit); err != nil {
		return nil, errors.Wrap(err, "selecting ungraded schedules")
	}
	return samples, nil
}
