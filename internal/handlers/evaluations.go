package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/evaluaciones/internal/app"
	"github.com/shrimpsizemoose/evaluaciones/internal/export"
	"github.com/shrimpsizemoose/evaluaciones/internal/metrics"
	"github.com/shrimpsizemoose/evaluaciones/internal/models"
	"github.com/shrimpsizemoose/evaluaciones/internal/render"
	"github.com/shrimpsizemoose/evaluaciones/internal/store"
)

type adminPage struct {
	Search string
	Rows   []models.EvaluationSummary
}

type newEvaluationPage struct {
	Error  string
	Form   models.EvaluationForm
	PinMin int
	PinMax int
}

type createdPage struct {
	Evaluation *models.Evaluation
	Pin        string
}

func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")

	rows, err := h.service.ListEvaluations(r.Context(), search)
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}

	h.pages.Page(w, http.StatusOK, "Evaluaciones", "admin_list", adminPage{Search: search, Rows: rows}, h.shell(r))
}

func (h *Handler) NewEvaluation(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, models.EvaluationForm{}, "")
}

func (h *Handler) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, http.StatusBadRequest, models.EvaluationForm{}, "No se pudo leer el formulario.")
		return
	}

	form := models.EvaluationForm{
		StudentName: r.PostForm.Get("student_name"),
		StudentID:   r.PostForm.Get("student_id"),
		Course:      r.PostForm.Get("course"),
		Date:        r.PostForm.Get("date"),
		Score:       r.PostForm.Get("score"),
		Comments:    r.PostForm.Get("comments"),
		Pin:         r.PostForm.Get("view_code"),
	}

	evaluation, err := h.service.CreateEvaluation(r.Context(), form)
	var verr *app.ValidationError
	if errors.As(err, &verr) {
		form.Pin = ""
		h.renderForm(w, r, http.StatusBadRequest, form, verr.Message)
		return
	}
	if err != nil {
		h.fail(w, r, err, "/evaluations/new")
		return
	}

	metrics.EvaluationsCreatedTotal.Inc()
	logger.Info.Printf("Created evaluation %d", evaluation.ID)

	h.pages.Page(w, http.StatusOK, "Evaluación creada", "created", createdPage{
		Evaluation: evaluation,
		Pin:        form.Pin,
	}, h.shell(r))
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, form models.EvaluationForm, msg string) {
	h.pages.Page(w, status, "Nueva evaluación", "new_evaluation", newEvaluationPage{
		Error:  msg,
		Form:   form,
		PinMin: h.service.Config.Pin.MinLength,
		PinMax: h.service.Config.Pin.MaxLength,
	}, h.shell(r))
}

func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := evaluationID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	evaluation, err := h.service.GetEvaluation(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "/admin")
		return
	}

	h.pages.Page(w, http.StatusOK, fmt.Sprintf("Evaluación #%d", evaluation.ID), "detail", evaluation, h.shell(r))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := evaluationID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	if err := h.service.DeleteEvaluation(r.Context(), id); err != nil {
		h.fail(w, r, err, "/admin")
		return
	}

	metrics.EvaluationsDeletedTotal.Inc()
	logger.Info.Printf("Deleted evaluation %d", id)

	if err := h.service.Sessions.SetFlash(r, fmt.Sprintf("Evaluación #%d eliminada.", id)); err != nil {
		logger.Error.Printf("Failed to set flash: %v", err)
	}
	redirect(w, "/admin")
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	evaluations, err := h.service.ExportAll(r.Context())
	if err != nil {
		h.fail(w, r, err, "/admin")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)

	if err := export.WriteCSV(w, evaluations); err != nil {
		logger.Error.Printf("Failed to stream export: %v", err)
		return
	}
	logger.Debug.Printf("Exported %d evaluations", len(evaluations))
}

// Home is the public landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.pages.Page(w, http.StatusOK, "Consulta tu evaluación", "home", nil, h.shell(r))
}

// Lookup serves /ver: the lookup form without codigo, the record with a known one.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("codigo")
	if code == "" {
		h.pages.Page(w, http.StatusOK, "Consulta tu evaluación", "lookup", nil, h.shell(r))
		return
	}

	evaluation, err := h.service.FindByPin(r.Context(), code)
	if errors.Is(err, store.ErrNotFound) {
		metrics.PinLookupsTotal.WithLabelValues(metrics.LookupMissing).Inc()
		h.notFound(w, r, "No hay ninguna evaluación con ese código. Revisa que lo hayas escrito bien.")
		return
	}
	if err != nil {
		h.fail(w, r, err, "/ver")
		return
	}

	metrics.PinLookupsTotal.WithLabelValues(metrics.LookupFound).Inc()
	h.pages.Page(w, http.StatusOK, "Tu evaluación", "result", evaluation, render.ShellOptions{
		IsTeacher: h.service.Sessions.IsTeacherAuthenticated(r),
	})
}
