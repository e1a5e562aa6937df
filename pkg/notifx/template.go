package notifx

import (
	"bytes"
	"html/template"
	"sync"
)

// TemplateRegistry stores named html/templates for email bodies.
type TemplateRegistry struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

// NewTemplateRegistry creates an empty registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{templates: make(map[string]*template.Template)}
}

// Register parses body and stores it under name, replacing any previous
// template with that name.
func (r *TemplateRegistry) Register(name, body string) error {
	t, err := template.New(name).Parse(body)
	if err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
	}
	r.mu.Lock()
	r.templates[name] = t
	r.mu.Unlock()
	return nil
}

// Render executes the named template with data.
func (r *TemplateRegistry) Render(name string, data any) (string, error) {
	r.mu.RLock()
	t, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return "", notifxErrors.New(ErrTemplateNotFound).WithDetail("template", name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
	}
	return buf.String(), nil
}
