package notifx_test

import (
	"context"
	"strings"
	"testing"

	"github.com/openhire/openhire/pkg/notifx"
)

type captureSender struct {
	last notifx.EmailMessage
}

func (c *captureSender) SendEmail(_ context.Context, msg notifx.EmailMessage) error {
	c.last = msg
	return nil
}

func TestTemplateRegistryRender(t *testing.T) {
	r := notifx.NewTemplateRegistry()
	if err := r.Register("greet", "<p>Hello {{.Name}}</p>"); err != nil {
		t.Fatalf("register: %v", err)
	}

	out, err := r.Render("greet", map[string]string{"Name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Hello Ada") {
		t.Errorf("unexpected render output: %s", out)
	}
}

func TestTemplateRegistryEscapesHTML(t *testing.T) {
	r := notifx.NewTemplateRegistry()
	if err := r.Register("x", "{{.V}}"); err != nil {
		t.Fatalf("register: %v", err)
	}
	out, err := r.Render("x", map[string]string{"V": "<script>alert(1)</script>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Error("html/template should escape script tags")
	}
}

func TestRenderMissingTemplate(t *testing.T) {
	r := notifx.NewTemplateRegistry()
	if _, err := r.Render("missing", nil); err == nil {
		t.Error("expected error for missing template")
	}
}

func TestClientAppliesDefaultFrom(t *testing.T) {
	sender := &captureSender{}
	c := notifx.NewClient(sender, "noreply@openhire.dev")

	err := c.SendEmail(context.Background(), notifx.EmailMessage{
		To:      []string{"alice@example.com"},
		Subject: "hi",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sender.last.From != "noreply@openhire.dev" {
		t.Errorf("expected default from, got %q", sender.last.From)
	}
}

func TestClientRejectsEmptyRecipients(t *testing.T) {
	c := notifx.NewClient(&captureSender{}, "noreply@openhire.dev")
	if err := c.SendEmail(context.Background(), notifx.EmailMessage{Subject: "hi"}); err == nil {
		t.Error("expected validation error for empty recipients")
	}
}

func TestSendTemplated(t *testing.T) {
	sender := &captureSender{}
	c := notifx.NewClient(sender, "noreply@openhire.dev")
	if err := c.RegisterTemplate("status", "<p>Application {{.Status}}</p>"); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := c.SendTemplated(context.Background(), "status",
		map[string]string{"Status": "accepted"},
		notifx.EmailMessage{To: []string{"bob@example.com"}, Subject: "Update"})
	if err != nil {
		t.Fatalf("send templated: %v", err)
	}
	if !strings.Contains(sender.last.HTMLBody, "accepted") {
		t.Errorf("expected rendered body, got %q", sender.last.HTMLBody)
	}
}
