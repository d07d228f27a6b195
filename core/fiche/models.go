package fiche

import (
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
)

// ProcessName is recorded on every schedule updated by the grading job.
const ProcessName = "processSchedules"

// Grade statuses and results written to processing logs.
const (
	StatusNotProcessed = "No procesado"
	StatusFailed       = "Error en el procesamiento"

	ResultGraded   = "Horarios actualizados como calificados"
	ResultDeferred = "Reporte con fecha calificable futura; seguimiento pospuesto"
	ResultNotified = "Reporte sin calificación confirmada; notificación enviada al instructor"
	ResultFailed   = "No fue posible actualizar el estado"
)

var (
	// errors
	ErrMissingFicheNumber = errors.New("La ficha no tiene número asignado.")
)

type (
	Instructor struct {
		ID            string `db:"id" json:"id"`
		Name          string `db:"name" json:"name"`
		Email         string `db:"email" json:"email"`
		PersonalEmail string `db:"personal_email" json:"personalEmail"`
	}

	Fiche struct {
		ID          string `db:"id" json:"id"`
		Number      string `db:"number" json:"number"`
		ProgramName string `db:"program_name" json:"programName"`
		OwnerID     string `db:"owner_id" json:"ownerId"`
	}

	// Schedule is one class schedule of a fiche. Graded and Gradable are unset on legacy rows.
	Schedule struct {
		ID              string    `json:"id"`
		FicheID         string    `json:"ficheId"`
		EndsAt          time.Time `json:"endsAt"`
		Graded          null.Bool `json:"graded"`
		Gradable        null.Bool `json:"gradable"`
		QualifiableDate null.Time `json:"qualifiableDate"`
		GradeDate       null.Time `json:"gradeDate"`
		GradeStatus     string    `json:"gradeStatus"`
		GradedByProcess string    `json:"gradedByProcess"`
	}

	// ScheduleGroup is the set of pending schedules of one fiche.
	ScheduleGroup struct {
		FicheID                 string   `db:"fiche_id" json:"ficheId"`
		FicheNumber             string   `db:"fiche_number" json:"ficheNumber"`
		ProgramName             string   `db:"program_name" json:"programName"`
		InstructorID            string   `db:"instructor_id" json:"instructorId"`
		InstructorName          string   `db:"instructor_name" json:"instructorName"`
		InstructorEmail         string   `db:"instructor_email" json:"instructorEmail"`
		InstructorPersonalEmail string   `db:"instructor_personal_email" json:"instructorPersonalEmail"`
		ScheduleIDs             []string `db:"-" json:"scheduleIds"`
	}

	// GradeUpdate is applied to every schedule of a group.
	GradeUpdate struct {
		StatusLabel string
		GradeDate   null.Time
		Process     string
	}

	// ProcessingLog is the audit record written once per processed group.
	ProcessingLog struct {
		ID                 string    `json:"id"`
		FicheID            string    `json:"fiche"`
		FicheNumber        string    `json:"ficheNumber"`
		InstructorID       string    `json:"instructor"`
		InstructorName     string    `json:"instructorName"`
		InstructorEmail    string    `json:"instructorEmail"`
		ScheduleIDs        []string  `json:"scheduleIds"`
		ScheduleCount      int       `json:"scheduleCount"`
		Graded             bool      `json:"graded"`
		GradeStatus        string    `json:"gradeStatus"`
		GradeDate          null.Time `json:"gradeDate"`
		Qualifiable        bool      `json:"qualifiable"`
		QualifiableDate    null.Time `json:"qualifiableDate"`
		ReportFile         string    `json:"reportFile"`
		Result             string    `json:"result"`
		ErrorMessage       string    `json:"errorMessage,omitempty"`
		NotificationSentAt null.Time `json:"notificationSentAt"`
		ProcessedAt        time.Time `json:"processedAt"`
	}

	// NotificationFilter narrows the notification history. Zero values do not filter.
	NotificationFilter struct {
		StartDate   null.Time
		EndDate     null.Time
		FicheNumber string // case-insensitive prefix
	}

	// NotificationRecord is the public view of a notification log.
	NotificationRecord struct {
		FicheNumber     string    `json:"ficheNumber"`
		InstructorName  string    `json:"instructorName"`
		InstructorEmail string    `json:"instructorEmail"`
		GradeStatus     string    `json:"gradeStatus"`
		GradeDate       null.Time `json:"gradeDate"`
		ReportFile      string    `json:"reportFile"`
		ProcessedAt     time.Time `json:"processedAt"`
	}

	// RunSummary counts the outcomes of one ProcessPending run.
	RunSummary struct {
		RunID     string `json:"runId"`
		Found     int    `json:"found"`
		Processed int    `json:"processed"`
		Graded    int    `json:"graded"`
		Deferred  int    `json:"deferred"`
		Notified  int    `json:"notified"`
		Failed    int    `json:"failed"`
	}
)

func (g ScheduleGroup) ScheduleCount() int { return len(g.ScheduleIDs) }

func (g ScheduleGroup) logSubject() core.LogSubject {
	return core.LogSubject{ID: g.FicheID, Name: g.FicheNumber}
}

// IsNotification reports whether the log belongs to the notification history.
func (l ProcessingLog) IsNotification() bool {
	return l.NotificationSentAt.Valid || l.Result == ResultNotified
}

// EventTime is when the notification happened, or when the group was processed.
func (l ProcessingLog) EventTime() time.Time {
	if l.NotificationSentAt.Valid {
		return l.NotificationSentAt.Time
	}
	return l.ProcessedAt
}

func (l ProcessingLog) Record() NotificationRecord {
	return NotificationRecord{
		FicheNumber:     l.FicheNumber,
		InstructorName:  l.InstructorName,
		InstructorEmail: l.InstructorEmail,
		GradeStatus:     l.GradeStatus,
		GradeDate:       l.GradeDate,
		ReportFile:      l.ReportFile,
		ProcessedAt:     l.ProcessedAt,
	}
}

// InRange applies the filter's date bounds (inclusive) to the log's event time.
func (f NotificationFilter) InRange(l ProcessingLog) bool {
	at := l.EventTime()
	if f.StartDate.Valid && at.Before(f.StartDate.Time) {
		return false
	}
	if f.EndDate.Valid && at.After(f.EndDate.Time) {
		return false
	}
	return true
}
