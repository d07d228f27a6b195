package fiche

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/core/report"
)

var nowFunc = time.Now

type (
	// ReportDownloader fetches grading reports from the academic portal.
	ReportDownloader interface {
		Login(ctx context.Context) error
		// DownloadReport saves the report of a fiche and returns its local path.
		DownloadReport(ctx context.Context, ficheCode string) (string, error)
		Close() error
	}

	ReportAnalyzer interface {
		AnalyzeFile(path string) (report.Decision, error)
	}

	ScheduleRepository interface {
		// PendingGroups returns the ungraded, gradable schedules that ended before cutoff,
		// grouped per fiche and ordered by fiche number.
		PendingGroups(ctx context.Context, cutoff time.Time) ([]ScheduleGroup, error)
		MarkGraded(ctx context.Context, scheduleIDs []string, upd GradeUpdate) error
		MarkPending(ctx context.Context, scheduleIDs []string, upd GradeUpdate, qualifiableFuture bool) error
	}

	LogRepository interface {
		CreateLog(ctx context.Context, log ProcessingLog) (ProcessingLog, error)
		// QueryNotificationLogs returns notification logs matching filter.FicheNumber, most recent
		// notification first. Date bounds are applied by the caller.
		QueryNotificationLogs(ctx context.Context, filter NotificationFilter) ([]ProcessingLog, error)
	}

	Options struct {
		Conf      *core.Config
		Schedules ScheduleRepository
		Logs      LogRepository
		Portal    ReportDownloader
		Analyzer  ReportAnalyzer
		Notifier  Notifier
		Logger    core.Logger
	}

	Service struct {
		conf      *core.Config
		schedules ScheduleRepository
		logs      LogRepository
		portal    ReportDownloader
		analyzer  ReportAnalyzer
		notifier  Notifier
		logger    core.Logger
	}

	// outcome of one group
	groupRun struct {
		state State
		log   ProcessingLog
	}
)

func NewService(opts Options) *Service {
	return &Service{
		conf:      opts.Conf,
		schedules: opts.Schedules,
		logs:      opts.Logs,
		portal:    opts.Portal,
		analyzer:  opts.Analyzer,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
	}
}

// Cutoff returns the end date before which schedules are considered overdue.
func (svc *Service) Cutoff(now time.Time) time.Time {
	return core.Today(now, svc.conf.Location()).AddDate(0, 0, -svc.conf.Job.CutoffDays)
}

// ProcessPending runs one batch: at most Job.BatchSize overdue groups are checked on the
// portal, updated and logged. Errors of a single group are logged and never abort the batch.
func (svc *Service) ProcessPending(ctx context.Context) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.New().String()}
	now := nowFunc()
	today := core.Today(now, svc.conf.Location())

	groups, err := svc.schedules.PendingGroups(ctx, svc.Cutoff(now))
	if err != nil {
		return summary, errors.Wrap(err, "querying pending schedule groups")
	}
	summary.Found = len(groups)
	if len(groups) == 0 {
		svc.logger.Info("No se encontraron horarios pendientes de calificación.")
		return summary, nil
	}

	batch := groups
	if size := svc.conf.Job.BatchSize; size > 0 && len(batch) > size {
		batch = batch[:size]
	}
	msg := fmt.Sprintf("Se encontraron %d fichas con horarios pendientes de calificación; se procesarán %d.", len(groups), len(batch))
	if left := len(groups) - len(batch); left > 0 {
		msg += fmt.Sprintf(" Quedan %d para la siguiente ejecución.", left)
	}
	svc.logger.Info(msg, map[string]interface{}{"runId": summary.RunID})

	if err := svc.portal.Login(ctx); err != nil {
		return summary, errors.Wrap(err, "logging into portal")
	}
	defer func() {
		if err := svc.portal.Close(); err != nil {
			svc.logger.Warn("closing portal session", err)
		}
	}()

	for _, group := range batch {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		run := svc.processGroup(ctx, group, today)
		summary.Processed++
		switch {
		case run.log.ErrorMessage != "":
			summary.Failed++
		case run.log.Graded:
			summary.Graded++
		case run.log.NotificationSentAt.Valid:
			summary.Notified++
		case !run.log.Qualifiable:
			summary.Deferred++
		}
	}
	return summary, nil
}

func newProcessingLog(g ScheduleGroup) ProcessingLog {
	return ProcessingLog{
		FicheID:         g.FicheID,
		FicheNumber:     g.FicheNumber,
		InstructorID:    g.InstructorID,
		InstructorName:  g.InstructorName,
		InstructorEmail: ContactPolicy.Resolve(g),
		ScheduleIDs:     g.ScheduleIDs,
		ScheduleCount:   g.ScheduleCount(),
		GradeStatus:     StatusNotProcessed,
		Qualifiable:     true,
	}
}

func (svc *Service) processGroup(ctx context.Context, g ScheduleGroup, today time.Time) groupRun {
	run := groupRun{state: StateStart, log: newProcessingLog(g)}

	if err := svc.applyGroup(ctx, g, today, &run); err != nil {
		svc.logger.Error(fmt.Sprintf("Error procesando la ficha %s", g.FicheNumber), err, g.logSubject())
		if terr := Transition(&run.state, StateFailed); terr != nil {
			svc.logger.Error("invalid processing state", terr)
		}
		run.log.ErrorMessage = err.Error()
		run.log.GradeStatus = StatusFailed
		run.log.Result = ResultFailed
	}

	run.log.ProcessedAt = nowFunc().UTC()
	if _, err := svc.logs.CreateLog(ctx, run.log); err != nil {
		svc.logger.Error(fmt.Sprintf("saving processing log of fiche %s", g.FicheNumber), err, g.logSubject())
	}
	if err := Transition(&run.state, StateLogged); err != nil {
		svc.logger.Error("invalid processing state", err)
	}
	return run
}

func (svc *Service) applyGroup(ctx context.Context, g ScheduleGroup, today time.Time, run *groupRun) error {
	if g.FicheNumber == "" {
		return ErrMissingFicheNumber
	}

	path, err := svc.portal.DownloadReport(ctx, g.FicheNumber)
	if err != nil {
		return errors.Wrap(err, "downloading report")
	}
	if err := Transition(&run.state, StateReportDownloaded); err != nil {
		return err
	}
	run.log.ReportFile = filepath.Base(path)

	decision, err := svc.analyzer.AnalyzeFile(path)
	if err != nil {
		return errors.Wrap(err, "analyzing report")
	}
	if err := Transition(&run.state, StateDecided); err != nil {
		return err
	}
	run.log.Graded = decision.Graded
	run.log.GradeStatus = decision.StatusLabel
	run.log.GradeDate = decision.GradeDate
	if decision.QualifiableDate.Valid {
		run.log.QualifiableDate = null.TimeFrom(core.DateOnly(decision.QualifiableDate.Time.In(svc.conf.Location())))
	}

	upd := GradeUpdate{StatusLabel: decision.StatusLabel, GradeDate: decision.GradeDate, Process: ProcessName}

	if decision.Graded {
		run.log.Qualifiable = true
		run.log.QualifiableDate = null.Time{}
		if !upd.GradeDate.Valid {
			upd.GradeDate = null.TimeFrom(nowFunc())
		}
		if err := svc.schedules.MarkGraded(ctx, g.ScheduleIDs, upd); err != nil {
			return errors.Wrap(err, "marking schedules as graded")
		}
		run.log.Result = ResultGraded
		return Transition(&run.state, StateGradedApplied)
	}

	future := run.log.QualifiableDate.Valid && run.log.QualifiableDate.Time.After(today)
	run.log.Qualifiable = !future
	if err := svc.schedules.MarkPending(ctx, g.ScheduleIDs, upd, future); err != nil {
		return errors.Wrap(err, "marking schedules as pending")
	}
	if future {
		run.log.Result = ResultDeferred
		return Transition(&run.state, StateFutureDeferred)
	}

	run.log.Result = ResultNotified
	if err := svc.notifier.Notify(ctx, Notification{Group: g, Decision: decision}); err != nil {
		return err
	}
	run.log.NotificationSentAt = null.TimeFrom(nowFunc().UTC())
	return Transition(&run.state, StateNotificationSent)
}

// QueryNotifications returns the notification history, most recent first.
func (svc *Service) QueryNotifications(ctx context.Context, filter NotificationFilter) ([]NotificationRecord, error) {
	filter.FicheNumber = core.CleanString(filter.FicheNumber)
	logs, err := svc.logs.QueryNotificationLogs(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying notification logs")
	}
	records := make([]NotificationRecord, 0, len(logs))
	for _, l := range logs {
		if filter.InRange(l) {
			records = append(records, l.Record())
		}
	}
	return records, nil
}
