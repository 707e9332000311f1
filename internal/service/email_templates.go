package service

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/templui/apiplate/internal/markdown"
)

const (
	TemplateVerify  = "verify"
	TemplateReset   = "reset"
	TemplateWelcome = "welcome"
)

//go:embed templates/*.md
var templatesFS embed.FS

// emailTemplates renders markdown email templates with YAML frontmatter.
// Placeholders are filled first, then the markdown is converted to HTML and
// the frontmatter "subject" is read.
type emailTemplates struct {
	set    *template.Template
	parser *markdown.Parser
}

func newEmailTemplates() (*emailTemplates, error) {
	set, err := template.New("emails").
		Option("missingkey=error").
		ParseFS(templatesFS, "templates/*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailTemplates{set: set, parser: markdown.NewParser()}, nil
}

type renderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

func (t *emailTemplates) render(name string, data map[string]any) (*renderedEmail, error) {
	tmpl := t.set.Lookup(name + ".md")
	if tmpl == nil {
		return nil, fmt.Errorf("email template %q not found", name)
	}

	var source bytes.Buffer
	err := tmpl.Execute(&source, data)
	if err != nil {
		return nil, fmt.Errorf("failed to execute email template %q: %w", name, err)
	}

	html, meta, err := t.parser.ParseWithFrontmatter(source.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to render email template %q: %w", name, err)
	}

	subject, _ := meta["subject"].(string)

	return &renderedEmail{
		Subject: strings.TrimSpace(subject),
		HTML:    string(html),
		Text:    string(markdown.Body(source.Bytes())),
	}, nil
}
