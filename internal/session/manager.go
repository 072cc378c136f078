// Package session implements the teacher session gate: a server-side
// session store addressed by an HS256-signed, httponly cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	DefaultCookieName = "evaluaciones.sid"
	DefaultTTL        = 8 * time.Hour
	issuer            = "evaluaciones"
)

type Options struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
	LoginPath  string
}

type Manager struct {
	store      Store
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	loginPath  string
	now        func() time.Time
}

func NewManager(store Store, opts Options) (*Manager, error) {
	if opts.Secret == "" {
		return nil, fmt.Errorf("session secret is empty")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}

	return &Manager{
		store:      store,
		secret:     []byte(opts.Secret),
		ttl:        opts.TTL,
		cookieName: opts.CookieName,
		secure:     opts.Secure,
		loginPath:  opts.LoginPath,
		now:        time.Now,
	}, nil
}

// load resolves the cookie to a live session. A missing, tampered or
// expired cookie is not an error, just no session.
func (m *Manager) load(r *http.Request) (string, *Data, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", nil, ErrNoSession
	}

	id, err := m.parse(cookie.Value)
	if err != nil {
		logger.Debug.Printf("Rejected session cookie: %v", err)
		return "", nil, ErrNoSession
	}

	data, err := m.store.Get(r.Context(), id)
	if err != nil {
		return "", nil, err
	}
	return id, data, nil
}

func (m *Manager) IsTeacherAuthenticated(r *http.Request) bool {
	_, data, err := m.load(r)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			logger.Error.Printf("Failed to load session: %v", err)
		}
		return false
	}
	return data.Teacher
}

// MarkTeacherAuthenticated starts a fresh teacher session, replacing any
// session the browser already had. flash is shown on the next page.
func (m *Manager) MarkTeacherAuthenticated(w http.ResponseWriter, r *http.Request, flash string) error {
	if oldID, _, err := m.load(r); err == nil {
		if err := m.store.Delete(r.Context(), oldID); err != nil {
			return fmt.Errorf("failed to drop previous session: %w", err)
		}
	}

	now := m.now()
	id := uuid.NewString()
	data := &Data{
		Teacher:   true,
		Flash:     flash,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(r.Context(), id, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	token, err := m.sign(id, data)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  data.ExpiresAt,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Destroy removes the session server-side and clears the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	var err error
	if id, _, loadErr := m.load(r); loadErr == nil {
		err = m.store.Delete(r.Context(), id)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	if err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// SetFlash attaches a one-shot message to the current session, if any.
func (m *Manager) SetFlash(r *http.Request, msg string) error {
	id, data, err := m.load(r)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	data.Flash = msg
	return m.store.Save(r.Context(), id, data)
}

// PopFlash returns and clears the pending flash message.
func (m *Manager) PopFlash(r *http.Request) string {
	id, data, err := m.load(r)
	if err != nil || data.Flash == "" {
		return ""
	}
	msg := data.Flash
	data.Flash = ""
	if err := m.store.Save(r.Context(), id, data); err != nil {
		logger.Error.Printf("Failed to clear flash: %v", err)
	}
	return msg
}

// RequireTeacher redirects to the login page before next ever runs.
func (m *Manager) RequireTeacher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.IsTeacherAuthenticated(r) {
			w.Header().Set("Location", m.loginPath)
			w.WriteHeader(http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) sign(id string, data *Data) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        id,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(data.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(data.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) parse(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.ID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.ID, nil
}
