package emailsvc

import (
	"context"
	"log"
	"net/mail"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
)

var (
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

type consoleService struct {
	appName       string
	from          mail.Address
	std           *log.Logger
	disableOutput bool
}

var _ core.EmailService = (*consoleService)(nil)

// NewConsoleService prints messages to std instead of sending them.
func NewConsoleService(conf *core.Config, std *log.Logger) core.EmailService {
	return &consoleService{
		appName: conf.AppName,
		from:    fromAddress(conf),
		std:     std,
	}
}

func (svc consoleService) SendMessages(ctx context.Context, messages ...*core.EmailMessage) error {
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := svc.sendMessage(msg); err != nil {
			return err
		}
	}
	return nil
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) error {
	if err := msg.Render(svc.appName); err != nil {
		return errors.Wrap(err, "rendering email")
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return nil
	}
	body, err := buildMIME(svc.from, msg, time.Now())
	if err != nil {
		return err
	}
	if !svc.disableOutput {
		svc.std.Println(body)
	}
	mu.Lock()
	SentMessages = append(SentMessages, *msg)
	mu.Unlock()
	return nil
}

// NewConsoleServiceMock records messages in SentMessages without printing them.
func NewConsoleServiceMock(conf *core.Config) core.EmailService {
	return &consoleService{
		appName:       conf.AppName,
		from:          fromAddress(conf),
		disableOutput: true,
	}
}

// ResetSentMessages empties SentMessages.
func ResetSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}
