// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"aventrada-server/commons"
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

//go:embed email_templates/*.html
var templateFS embed.FS

var (
	templatesOnce sync.Once
	templates     *template.Template
	templatesErr  error
)

func loadTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		templates, templatesErr = template.ParseFS(templateFS, "email_templates/*.html")
	})
	return templates, templatesErr
}

func defaultVariables() map[string]any {
	return map[string]any{
		"product_name": commons.GetEnv("PRODUCT_NAME", "Aventrada"),
		"site_url":     commons.GetEnv("PUBLIC_SITE_URL", "https://aventrada.com"),
	}
}

// RenderTemplate executes email_templates/<name>.html with the default
// variables overlaid by the caller's.
func RenderTemplate(name string, variables map[string]any) (string, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return "", fmt.Errorf("failed to parse email templates: %w", err)
	}

	file := name + ".html"
	if tmpl.Lookup(file) == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	vars := defaultVariables()
	for k, v := range variables {
		vars[k] = v
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, file, vars); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
