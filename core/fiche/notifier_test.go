package fiche

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/core/report"
	logsvc "github.com/MarcosBaez42/automatizacion-sofia/services/logger"
)

type mailServiceMock struct {
	err  error
	sent []*core.EmailMessage
}

func (m *mailServiceMock) SendMessages(_ context.Context, messages ...*core.EmailMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, messages...)
	return nil
}

func pendingNotification() Notification {
	return Notification{
		Group: ScheduleGroup{
			FicheNumber:             "2758954",
			InstructorName:          "Ana Pérez",
			InstructorEmail:         "ana@sena.edu.co",
			InstructorPersonalEmail: "ana@mail.com",
		},
		Decision: report.Decision{StatusLabel: report.StatusPending},
	}
}

func TestMailNotifier_Notify(t *testing.T) {
	conf := core.NewTestConfig()
	mailSvc := new(mailServiceMock)
	n := NewMailNotifier(conf, mailSvc, logsvc.NewNopLogger())

	require.NoError(t, n.Notify(context.Background(), pendingNotification()))
	require.Len(t, mailSvc.sent, 1)

	msg := mailSvc.sent[0]
	assert.Equal(t, "Ficha 2758954 - Estado de calificación", msg.Subject)
	require.Len(t, msg.To, 1)
	assert.Equal(t, "ana@sena.edu.co", msg.To[0].Address)
	assert.Equal(t, "Ana Pérez", msg.To[0].Name)

	require.NoError(t, msg.Render(conf.AppName))
	assert.Contains(t, msg.TextContent, "Hola Ana Pérez,")
	assert.Contains(t, msg.TextContent, `determinó el estado "Pendiente de Calificación"`)
	assert.Contains(t, msg.TextContent, "Fecha de calificación: No registrada.")
	assert.Contains(t, msg.HTMLContent, "<strong>2758954</strong>")
}

func TestMailNotifier_GradeDateAndOverride(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Mail.TestRecipient = "qa@test.co"
	n := NewMailNotifier(conf, new(mailServiceMock), logsvc.NewNopLogger())

	notif := pendingNotification()
	notif.Decision.GradeDate = null.TimeFrom(time.Date(2024, 3, 15, 19, 30, 0, 0, time.UTC))

	msg := n.Message(notif)
	require.NotNil(t, msg)
	assert.Equal(t, "qa@test.co", msg.To[0].Address)
	data, ok := msg.TemplateData.(pendingMailData)
	require.True(t, ok)
	assert.Equal(t, "15/03/2024 14:30:00", data.GradeDate) // Bogotá is UTC-5
}

func TestMailNotifier_Skips(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		conf := core.NewTestConfig()
		conf.Mail.Enabled = false
		mailSvc := new(mailServiceMock)
		assert.NoError(t, NewMailNotifier(conf, mailSvc, logsvc.NewNopLogger()).Notify(ctx, pendingNotification()))
		assert.Empty(t, mailSvc.sent)
	})

	t.Run("no mail service", func(t *testing.T) {
		assert.NoError(t, NewMailNotifier(core.NewTestConfig(), nil, logsvc.NewNopLogger()).Notify(ctx, pendingNotification()))
	})

	t.Run("no recipient", func(t *testing.T) {
		mailSvc := new(mailServiceMock)
		notif := pendingNotification()
		notif.Group.InstructorEmail, notif.Group.InstructorPersonalEmail = "", ""
		assert.NoError(t, NewMailNotifier(core.NewTestConfig(), mailSvc, logsvc.NewNopLogger()).Notify(ctx, notif))
		assert.Empty(t, mailSvc.sent)
	})
}

func TestMailNotifier_SendError(t *testing.T) {
	sendErr := errors.New("connection refused")
	n := NewMailNotifier(core.NewTestConfig(), &mailServiceMock{err: sendErr}, logsvc.NewNopLogger())

	err := n.Notify(context.Background(), pendingNotification())
	if errors.Cause(err) != sendErr {
		t.Errorf("Notify() error = %v, want %v", err, sendErr)
	}
}
