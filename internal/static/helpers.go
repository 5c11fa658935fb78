package static

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"

	"github.com/larsks/dronevision/internal/landing"
)

// TemplateData holds data for rendering HTML templates
type TemplateData struct {
	Title string
	Page  landing.Page
	CSS   template.CSS
	JS    template.JS
}

var funcs = template.FuncMap{
	"pct": func(v float64) template.CSS {
		return template.CSS(fmt.Sprintf("%g%%", v))
	},
}

var parseTemplates = sync.OnceValues(func() (*template.Template, error) {
	return template.New("base.html").Funcs(funcs).ParseFS(assets, "base.html", "landing.html")
})

// RenderTemplate renders the base HTML template with the provided data
func RenderTemplate(data TemplateData) (string, error) {
	if data.CSS == "" {
		css, err := GetCSS()
		if err != nil {
			return "", err
		}
		data.CSS = template.CSS(css)
	}

	if data.JS == "" {
		common, err := GetJS()
		if err != nil {
			return "", err
		}
		dashboard, err := GetDashboardJS()
		if err != nil {
			return "", err
		}
		data.JS = template.JS(string(common) + "\n" + string(dashboard))
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// GetBaseHTML returns the base HTML template content
func GetBaseHTML() ([]byte, error) {
	return assets.ReadFile("base.html")
}
