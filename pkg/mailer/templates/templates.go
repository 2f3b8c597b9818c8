package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

// Template names
const (
	VerifyEmail = "verify_email"
)

// Subject returns the mail subject line for a known template.
func Subject(name string) string {
	switch name {
	case VerifyEmail:
		return "Verify your email address"
	default:
		return "Notification"
	}
}

// RenderHTML renders the named template with data into an HTML body.
func RenderHTML(name string, data map[string]any) (string, error) {
	t, err := htmpl.ParseFS(FS, name+".tmpl")
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}
