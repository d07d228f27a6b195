package fiche

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/core/report"
)

const (
	pendingTemplate = "grading_pending"
	gradeDateLayout = "02/01/2006 15:04:05"
	noGradeDate     = "No registrada"
)

type (
	// Notification asks the instructor of a group to grade it.
	Notification struct {
		Group    ScheduleGroup
		Decision report.Decision
	}

	Notifier interface {
		Notify(ctx context.Context, n Notification) error
	}

	// MailNotifier emails instructors. A nil mail service disables it.
	MailNotifier struct {
		conf    *core.Config
		mailSvc core.EmailService
		policy  RecipientPolicy
		logger  core.Logger
	}

	pendingMailData struct {
		InstructorName string
		FicheNumber    string
		StatusLabel    string
		GradeDate      string
	}
)

var _ Notifier = (*MailNotifier)(nil)

func NewMailNotifier(conf *core.Config, mailSvc core.EmailService, logger core.Logger) *MailNotifier {
	return &MailNotifier{
		conf:    conf,
		mailSvc: mailSvc,
		policy:  NewRecipientPolicy(conf.Mail.TestRecipient),
		logger:  logger,
	}
}

// Message builds the notification email, or nil when the group has no recipient.
func (n *MailNotifier) Message(notif Notification) *core.EmailMessage {
	recipient := n.policy.Resolve(notif.Group)
	if recipient == "" {
		return nil
	}

	gradeDate := noGradeDate
	if notif.Decision.GradeDate.Valid {
		gradeDate = notif.Decision.GradeDate.Time.In(n.conf.Location()).Format(gradeDateLayout)
	}
	return &core.EmailMessage{
		To:           []mail.Address{{Name: notif.Group.InstructorName, Address: recipient}},
		Subject:      fmt.Sprintf("Ficha %s - Estado de calificación", notif.Group.FicheNumber),
		TemplateName: pendingTemplate,
		TemplateData: pendingMailData{
			InstructorName: notif.Group.InstructorName,
			FicheNumber:    notif.Group.FicheNumber,
			StatusLabel:    notif.Decision.StatusLabel,
			GradeDate:      gradeDate,
		},
	}
}

// Notify sends the email. Disabled mail or a missing recipient is logged and skipped.
func (n *MailNotifier) Notify(ctx context.Context, notif Notification) error {
	ficheNumber := notif.Group.FicheNumber
	if !n.conf.Mail.Enabled || n.mailSvc == nil {
		n.logger.Info(fmt.Sprintf("Notificación omitida para ficha %s; correo deshabilitado.", ficheNumber))
		return nil
	}
	msg := n.Message(notif)
	if msg == nil {
		n.logger.Warn(fmt.Sprintf("No hay correo configurado para el instructor de la ficha %s", ficheNumber))
		return nil
	}
	return errors.Wrapf(n.mailSvc.SendMessages(ctx, msg), "notifying instructor of fiche %s", ficheNumber)
}
