package emailsvc

import (
	"log"
	"net/mail"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
)

func fromAddress(conf *core.Config) mail.Address {
	name := conf.Mail.FromName
	if name == "" {
		name = conf.AppName
	}
	addr := conf.Mail.FromEmail
	if addr == "" {
		addr = conf.Mail.SMTPUser
	}
	return mail.Address{Name: name, Address: addr}
}

// New returns the configured mail backend, or nil when mail is disabled or the
// backend lacks credentials.
func New(conf *core.Config, std *log.Logger, logger core.Logger) core.EmailService {
	if !conf.Mail.Enabled {
		return nil
	}
	switch conf.Mail.Backend {
	case core.MailSendgrid:
		if conf.Mail.SendgridAPIKey == "" {
			logger.Warn("No se ha configurado la llave de SendGrid. No se enviarán correos.")
			return nil
		}
		return NewSendgridService(conf)
	case core.MailSMTP:
		if conf.Mail.SMTPUser == "" || conf.Mail.SMTPPassword == "" {
			logger.Warn("No se ha configurado el usuario o la contraseña SMTP. No se enviarán correos.")
			return nil
		}
		return NewSMTPService(conf)
	default:
		return NewConsoleService(conf, std)
	}
}
