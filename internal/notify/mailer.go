package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer is the outbound e-mail capability. The default implementation only
// logs; a real SMTP sender can be swapped in without touching callers.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

type LogMailer struct {
	Log *zap.Logger
}

func (l *LogMailer) Send(_ context.Context, m Message) error {
	l.Log.Info("mail (not sent, log-only mailer)",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
	)
	return nil
}

// ShareInvite builds the e-mail asking a client to fill in their checklist.
func ShareInvite(to, clientName, serviceType, link string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("You have a pending request to answer - %s", serviceType),
		HTML: fmt.Sprintf(
			`<p>Hello %s,</p>
<p>We need a few details from you for <strong>%s</strong>.</p>
<p>Please fill in your checklist here: <a href="%s">%s</a></p>
<p>CheckClient</p>`,
			clientName, serviceType, link, link),
	}
}
