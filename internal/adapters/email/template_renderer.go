package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	texttemplate "text/template"

	"eventify/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// templateRenderer implements domain.EmailTemplateRenderer using embedded template files.
// Each email "<name>" consists of <name>_subject.txt, <name>.html and <name>.txt.
type templateRenderer struct {
	html *template.Template
	text *texttemplate.Template
}

// NewTemplateRenderer parses every embedded template once. It panics if an
// embedded template is malformed, which can only happen at build time.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	r, err := newTemplateRenderer(templateFS)
	if err != nil {
		panic(err)
	}
	return r
}

func newTemplateRenderer(fsys fs.FS) (*templateRenderer, error) {
	r := &templateRenderer{
		html: template.New("emails").Option("missingkey=error"),
		text: texttemplate.New("emails").Option("missingkey=error"),
	}
	files, err := fs.Glob(fsys, "templates/*")
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimPrefix(path, "templates/")
		if strings.HasSuffix(name, ".html") {
			_, err = r.html.New(name).Parse(string(raw))
		} else {
			_, err = r.text.New(name).Parse(string(raw))
		}
		if err != nil {
			return nil, fmt.Errorf("parse email template %s: %w", name, err)
		}
	}
	return r, nil
}

// Render executes the named template (e.g. "rsvp_confirmation") with data and returns subject, html, and text bodies.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	subject, err = r.execText(templateName+"_subject.txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	htmlBody, err = r.execHTML(templateName+".html", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	textBody, err = r.execText(templateName+".txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return strings.TrimSpace(subject), htmlBody, textBody, nil
}

func (r *templateRenderer) execText(name string, data any) (string, error) {
	t := r.text.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *templateRenderer) execHTML(name string, data any) (string, error) {
	t := r.html.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
