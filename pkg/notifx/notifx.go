// Package notifx sends transactional email: application receipts and
// status-change notices. Providers: SES in production, console in dev.
package notifx

import "context"

// EmailSender sends one email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// Client routes emails through the configured provider and renders
// registered templates.
type Client struct {
	provider  EmailSender
	templates *TemplateRegistry
	from      string
}

// NewClient creates a notification client. from is the default sender
// address applied when a message has none.
func NewClient(provider EmailSender, from string) *Client {
	return &Client{
		provider:  provider,
		templates: NewTemplateRegistry(),
		from:      from,
	}
}

// SendEmail validates and sends msg through the provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage) error {
	if len(msg.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	if msg.Subject == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	if msg.From == "" {
		msg.From = c.from
	}
	return c.provider.SendEmail(ctx, msg)
}

// RegisterTemplate parses and stores a named template.
func (c *Client) RegisterTemplate(name, body string) error {
	return c.templates.Register(name, body)
}

// SendTemplated renders the named template into the HTML body and sends.
func (c *Client) SendTemplated(ctx context.Context, templateName string, data any, msg EmailMessage) error {
	body, err := c.templates.Render(templateName, data)
	if err != nil {
		return err
	}
	msg.HTMLBody = body
	return c.SendEmail(ctx, msg)
}
