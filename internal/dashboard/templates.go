package dashboard

import (
	_ "embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

// Template names understood by Renderer.
const (
	LoginTemplate     = "login"
	DashboardTemplate = "dashboard"
)

//go:embed templates/login.tmpl
var loginTemplateHTML string

//go:embed templates/dashboard.tmpl
var dashboardTemplateHTML string

// LoginPage is the data of the login template.
type LoginPage struct {
	Login  string
	Status Status
}

// Page is the data of the dashboard template.
type Page struct {
	User   string
	Status Status
	View   View
}

// Renderer is an echo.Renderer over the embedded templates.
type Renderer struct {
	templates map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// NewRenderer parses the embedded templates. It panics on a malformed template.
func NewRenderer() *Renderer {
	return &Renderer{templates: map[string]*template.Template{
		LoginTemplate:     template.Must(template.New(LoginTemplate).Parse(loginTemplateHTML)),
		DashboardTemplate: template.Must(template.New(DashboardTemplate).Parse(dashboardTemplateHTML)),
	}}
}

// Render executes the template called name.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return echo.ErrNotFound
	}
	return tmpl.Execute(w, data)
}
