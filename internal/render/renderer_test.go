package render

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/evaluaciones/internal/models"
)

func newRenderer(t *testing.T) *Renderer {
	r, err := New()
	require.NoError(t, err)
	return r
}

func TestShellNavigation(t *testing.T) {
	r := newRenderer(t)

	t.Run("anonymous visitor", func(t *testing.T) {
		doc, err := r.Shell("Inicio", template.HTML("<p>cuerpo</p>"), ShellOptions{})
		require.NoError(t, err)
		assert.Contains(t, doc, "<title>Inicio · Evaluaciones</title>")
		assert.Contains(t, doc, "<p>cuerpo</p>")
		assert.Contains(t, doc, `href="/login"`)
		assert.NotContains(t, doc, `action="/logout"`)
		assert.NotContains(t, doc, `class="flash"`)
	})

	t.Run("teacher with flash", func(t *testing.T) {
		doc, err := r.Shell("Evaluaciones", "", ShellOptions{IsTeacher: true, Flash: "Evaluación eliminada"})
		require.NoError(t, err)
		assert.Contains(t, doc, `href="/admin/export.csv"`)
		assert.Contains(t, doc, `action="/logout"`)
		assert.Contains(t, doc, `<div class="flash">Evaluación eliminada</div>`)
	})
}

func TestShellIsDeterministic(t *testing.T) {
	r := newRenderer(t)
	a, err := r.Shell("T", "<b>x</b>", ShellOptions{IsTeacher: true})
	require.NoError(t, err)
	b, err := r.Shell("T", "<b>x</b>", ShellOptions{IsTeacher: true})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFragmentEscapesRecordFields(t *testing.T) {
	r := newRenderer(t)
	score := 7.5

	body, err := r.Fragment("result", &models.Evaluation{
		StudentName: `<script>alert("x")</script>`,
		Score:       &score,
		Comments:    "bien\nmejorar <b>ortografía</b>",
	})
	require.NoError(t, err)

	html := string(body)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "7.5")
	assert.Contains(t, html, "mejorar &lt;b&gt;ortografía&lt;/b&gt;")
}

func TestCreatedPageEscapesPinInLink(t *testing.T) {
	r := newRenderer(t)

	body, err := r.Fragment("created", map[string]interface{}{
		"Evaluation": &models.Evaluation{ID: 3, StudentName: "Ana"},
		"Pin":        "48 37&x",
	})
	require.NoError(t, err)
	assert.Contains(t, string(body), `href="/ver?codigo=48%2037%26x"`)
}

func TestPage(t *testing.T) {
	r := newRenderer(t)
	rec := httptest.NewRecorder()

	r.Page(rec, http.StatusNotFound, "No encontrado", "not_found", map[string]string{"Message": "No existe"}, ShellOptions{})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "No existe")
}

func TestPageUnknownTemplate(t *testing.T) {
	r := newRenderer(t)
	rec := httptest.NewRecorder()

	r.Page(rec, http.StatusOK, "x", "does_not_exist", nil, ShellOptions{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
