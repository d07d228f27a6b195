package emailsvc

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
)

const implicitTLSPort = 465

type smtpService struct {
	appName  string
	from     mail.Address
	host     string
	port     int
	user     string
	password string
	timeout  time.Duration
}

var _ core.EmailService = (*smtpService)(nil)

// NewSMTPService sends through an authenticated SMTP relay: implicit TLS on port 465,
// STARTTLS (when offered) on any other port.
func NewSMTPService(conf *core.Config) *smtpService {
	return &smtpService{
		appName:  conf.AppName,
		from:     fromAddress(conf),
		host:     conf.Mail.SMTPHost,
		port:     conf.Mail.SMTPPort,
		user:     conf.Mail.SMTPUser,
		password: conf.Mail.SMTPPassword,
		timeout:  30 * time.Second,
	}
}

func (svc smtpService) implicitTLS() bool { return svc.port == implicitTLSPort }

func (svc smtpService) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(svc.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(svc.user),
		gomail.WithPassword(svc.password),
		gomail.WithTimeout(svc.timeout),
	}
	if svc.implicitTLS() {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	c, err := gomail.NewClient(svc.host, opts...)
	return c, errors.Wrap(err, "configuring smtp client")
}

func (svc smtpService) message(msg *core.EmailMessage) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.FromFormat(svc.from.Name, svc.from.Address); err != nil {
		return nil, errors.Wrap(err, "setting sender")
	}
	for _, a := range msg.To {
		if err := m.AddToFormat(a.Name, a.Address); err != nil {
			return nil, errors.Wrapf(err, "adding recipient %s", a.Address)
		}
	}
	for _, a := range msg.Cc {
		if err := m.AddCcFormat(a.Name, a.Address); err != nil {
			return nil, errors.Wrapf(err, "adding cc %s", a.Address)
		}
	}
	for _, a := range msg.Bcc {
		if err := m.AddBccFormat(a.Name, a.Address); err != nil {
			return nil, errors.Wrapf(err, "adding bcc %s", a.Address)
		}
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(gomail.TypeTextPlain, msg.TextContent)
	if msg.HTMLContent != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLContent)
	}
	return m, nil
}

func (svc smtpService) SendMessages(ctx context.Context, messages ...*core.EmailMessage) error {
	msgs := make([]*gomail.Msg, 0, len(messages))
	for _, msg := range messages {
		if err := msg.Render(svc.appName); err != nil {
			return errors.Wrap(err, "rendering email")
		}
		if !msg.HasRecipients() || !msg.HasContent() {
			continue
		}
		m, err := svc.message(msg)
		if err != nil {
			return err
		}
		msgs = append(msgs, m)
	}
	if len(msgs) == 0 {
		return nil
	}

	c, err := svc.client()
	if err != nil {
		return err
	}
	return errors.Wrap(c.DialAndSendWithContext(ctx, msgs...), "sending mail")
}
