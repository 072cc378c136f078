package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/evaluaciones/internal/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

type ShellOptions struct {
	IsTeacher bool
	Flash     string
}

type shellData struct {
	Title     string
	Body      template.HTML
	IsTeacher bool
	Flash     string
}

// Renderer executes page fragments and wraps them in the shared shell.
type Renderer struct {
	templates *template.Template
}

var funcs = template.FuncMap{
	"score": models.FormatScore,
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
}

func New() (*Renderer, error) {
	t, err := template.New("").Funcs(funcs).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Shell renders a full document around an already-rendered body.
func (r *Renderer) Shell(title string, body template.HTML, opts ShellOptions) (string, error) {
	var buf bytes.Buffer
	err := r.templates.ExecuteTemplate(&buf, "shell", shellData{
		Title:     title,
		Body:      body,
		IsTeacher: opts.IsTeacher,
		Flash:     opts.Flash,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render shell: %w", err)
	}
	return buf.String(), nil
}

// Fragment renders one named page template.
func (r *Renderer) Fragment(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Page renders fragment name inside the shell and writes it with status.
func (r *Renderer) Page(w http.ResponseWriter, status int, title, name string, data interface{}, opts ShellOptions) {
	body, err := r.Fragment(name, data)
	if err == nil {
		var doc string
		doc, err = r.Shell(title, body, opts)
		if err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(status)
			w.Write([]byte(doc))
			return
		}
	}

	logger.Error.Printf("Failed to render page %s: %v", name, err)
	http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
}
