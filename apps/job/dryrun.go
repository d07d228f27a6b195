package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
)

// dryRunSchedules reads pending groups but only logs updates.
type dryRunSchedules struct {
	fiche.ScheduleRepository
	logger core.Logger
}

func (r dryRunSchedules) MarkGraded(_ context.Context, ids []string, upd fiche.GradeUpdate) error {
	r.logger.Info(fmt.Sprintf("[dry-run] %d horarios se marcarían como %q", len(ids), upd.StatusLabel))
	return nil
}

func (r dryRunSchedules) MarkPending(_ context.Context, ids []string, upd fiche.GradeUpdate, future bool) error {
	msg := fmt.Sprintf("[dry-run] %d horarios quedarían como %q", len(ids), upd.StatusLabel)
	if future {
		msg += " (fecha calificable futura)"
	}
	r.logger.Info(msg)
	return nil
}

// dryRunNotifier logs the email the mail notifier would send.
type dryRunNotifier struct {
	mailer *fiche.MailNotifier
	logger core.Logger
}

func (n dryRunNotifier) Notify(_ context.Context, notif fiche.Notification) error {
	msg := n.mailer.Message(notif)
	if msg == nil {
		n.logger.Warn(fmt.Sprintf("[dry-run] ficha %s sin destinatario", notif.Group.FicheNumber))
		return nil
	}
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, addr.Address)
	}
	n.logger.Info(fmt.Sprintf("[dry-run] correo %q para %s", msg.Subject, strings.Join(to, ", ")))
	return nil
}
