package handlers

import (
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/evaluaciones/internal/metrics"
	"github.com/shrimpsizemoose/evaluaciones/internal/render"
)

type loginPage struct {
	Error string
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.service.Sessions.IsTeacherAuthenticated(r) {
		redirect(w, "/admin")
		return
	}
	h.pages.Page(w, http.StatusOK, "Acceso docente", "login", loginPage{}, render.ShellOptions{})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	addr := clientAddr(r, h.service.Config.Server.TrustProxy)

	allowed, err := h.service.Limiter.Allow(r.Context(), addr)
	if err != nil {
		h.fail(w, r, err, "/login")
		return
	}
	if !allowed {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.LoginLimited).Inc()
		logger.Info.Printf("Login attempts from %s exceeded the limit", addr)
		w.Header().Set("Retry-After", strconv.Itoa(h.service.Config.LoginLimit.WindowSeconds))
		h.pages.Page(w, http.StatusTooManyRequests, "Demasiados intentos", "error",
			messagePage{Message: "Demasiados intentos de acceso. Espera unos minutos antes de volver a intentarlo."},
			render.ShellOptions{})
		return
	}

	if !h.service.Auth.Check(r.PostFormValue("access_code")) {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.LoginFailure).Inc()
		logger.Info.Printf("Rejected teacher login from %s", addr)
		h.pages.Page(w, http.StatusUnauthorized, "Acceso docente", "login",
			loginPage{Error: "Código de acceso incorrecto."}, render.ShellOptions{})
		return
	}

	if err := h.service.Sessions.MarkTeacherAuthenticated(w, r, "Sesión iniciada."); err != nil {
		h.fail(w, r, err, "/login")
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.LoginSuccess).Inc()
	logger.Info.Printf("Teacher logged in from %s", addr)
	redirect(w, "/admin")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Sessions.Destroy(w, r); err != nil {
		logger.Error.Printf("Logout: %v", err)
	}
	redirect(w, "/")
}
