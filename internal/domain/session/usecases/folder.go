package usecases

import (
	"bytes"
	"fmt"
	"text/template"
	"time"
)

// FolderTemplateData holds the template variables available for meeting
// folder naming.
type FolderTemplateData struct {
	Year   string
	Month  string
	Day    string
	Hour   string
	Minute string
	Second string
	Name   string
}

// RenderFolderName renders the configured folder template for a meeting that
// started at t, with an optional name suffix.
func RenderFolderName(tmplStr string, t time.Time, name string) (string, error) {
	tmpl, err := template.New("folder").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("invalid folder template: %w", err)
	}

	data := FolderTemplateData{
		Year:   t.Format("2006"),
		Month:  t.Format("01"),
		Day:    t.Format("02"),
		Hour:   t.Format("15"),
		Minute: t.Format("04"),
		Second: t.Format("05"),
		Name:   name,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing folder template: %w", err)
	}
	return buf.String(), nil
}
