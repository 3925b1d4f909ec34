package mailer

import (
	"errors"

	"github.com/KeremAR/notification-service/config"
	mail "github.com/xhit/go-simple-mail/v2"
)

// Mailer is the best-effort email side channel. It never participates in the
// outcome of notification persistence: callers check Enabled, attempt Send
// and at most log and count a failure.
type Mailer struct {
	client *mail.SMTPClient
	from   string
}

func NewMailer(config *config.Config, client *mail.SMTPClient) *Mailer {
	return &Mailer{client: client, from: config.EmailConfig.From}
}

func (m *Mailer) Enabled() bool {
	return m.client != nil
}

// Send delivers a single plain-text mail. The user id doubles as the
// recipient address; the upstream user service registers users by email.
// The SMTP client carries its own send timeout, so a slow endpoint cannot
// stall the calling worker indefinitely.
func (m *Mailer) Send(to, subject, body string) error {
	if m.client == nil {
		return errors.New("email transport not configured")
	}

	email := mail.NewMSG()
	email.SetFrom(m.from).AddTo(to).SetSubject(subject).SetBody(mail.TextPlain, body)

	if email.Error != nil {
		return email.Error
	}

	return email.Send(m.client)
}
