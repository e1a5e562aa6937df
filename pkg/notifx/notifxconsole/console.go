// Package notifxconsole logs emails instead of sending them. Used in
// development and tests.
package notifxconsole

import (
	"context"
	"strings"

	"github.com/openhire/openhire/pkg/logx"
	"github.com/openhire/openhire/pkg/notifx"
)

// ConsoleProvider implements notifx.EmailSender by logging.
type ConsoleProvider struct{}

func NewConsoleProvider() *ConsoleProvider { return &ConsoleProvider{} }

func (p *ConsoleProvider) SendEmail(_ context.Context, msg notifx.EmailMessage) error {
	logx.WithFields(logx.Fields{
		"from":    msg.From,
		"to":      strings.Join(msg.To, ", "),
		"subject": msg.Subject,
	}).Info("notifx/console: email sent (dev mode)")

	if msg.TextBody != "" {
		logx.Debugf("notifx/console: text body:\n%s", msg.TextBody)
	}
	if msg.HTMLBody != "" {
		logx.Debugf("notifx/console: html body:\n%s", msg.HTMLBody)
	}
	return nil
}
