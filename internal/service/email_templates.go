package service

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"text/template"

	"github.com/vicu/vicu-api/internal/markdown"
)

//go:embed emails/*.md
var emailFS embed.FS

var emailTemplates = template.Must(
	template.New("emails").
		Funcs(template.FuncMap{"greeting": greeting, "quote": strconv.Quote}).
		ParseFS(emailFS, "emails/*.md"),
)

type emailData struct {
	Name      string
	GoalTitle string
	StepTitle string
	GoalURL   string
	AppURL    string
	AppName   string
}

func greeting(name string) string {
	if name == "" {
		return "Hola"
	}
	return "Hola " + name
}

func renderEmail(p *markdown.Parser, name string, data emailData) (*markdown.Document, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name+".md", data); err != nil {
		return nil, fmt.Errorf("failed to execute %s email: %w", name, err)
	}
	doc, err := p.Render(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return doc, nil
}
