package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/evaluaciones/internal/app"
	"github.com/shrimpsizemoose/evaluaciones/internal/render"
	"github.com/shrimpsizemoose/evaluaciones/internal/store"
)

const internalErrorMessage = "Se produjo un error interno. Inténtalo de nuevo más tarde."

type Handler struct {
	service *app.Service
	pages   *render.Renderer
}

func NewHandler(service *app.Service, pages *render.Renderer) *Handler {
	return &Handler{
		service: service,
		pages:   pages,
	}
}

type messagePage struct {
	Message string
	Back    string
}

// shell reports the auth state of the nav and consumes any pending flash.
func (h *Handler) shell(r *http.Request) render.ShellOptions {
	if !h.service.Sessions.IsTeacherAuthenticated(r) {
		return render.ShellOptions{}
	}
	return render.ShellOptions{
		IsTeacher: true,
		Flash:     h.service.Sessions.PopFlash(r),
	}
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "La página que buscas no existe.")
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.pages.Page(w, http.StatusNotFound, "No encontrado", "not_found", messagePage{Message: msg}, h.shell(r))
}

// fail maps a domain or storage error onto the response. Storage details
// stay in the log.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r, "No se encontró la evaluación solicitada.")
		return
	}

	logger.Error.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
	h.pages.Page(w, http.StatusInternalServerError, "Error", "error",
		messagePage{Message: internalErrorMessage, Back: back}, render.ShellOptions{})
}

// evaluationID parses the {id} path segment; anything but a positive integer is unknown.
func evaluationID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// redirect sends a bare 302 with no page body.
func redirect(w http.ResponseWriter, path string) {
	w.Header().Set("Location", path)
	w.WriteHeader(http.StatusFound)
}
