package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/evaluaciones/internal/models"
	"github.com/shrimpsizemoose/evaluaciones/internal/pin"
	"github.com/shrimpsizemoose/evaluaciones/internal/ratelimit"
	"github.com/shrimpsizemoose/evaluaciones/internal/sanitize"
	"github.com/shrimpsizemoose/evaluaciones/internal/session"
	"github.com/shrimpsizemoose/evaluaciones/internal/store"
)

type Service struct {
	Config    *Config
	Store     store.EvaluationStore
	Sessions  *session.Manager
	Limiter   ratelimit.Limiter
	Auth      *TeacherAuth
	Hasher    *pin.Hasher
	Sanitizer *sanitize.Sanitizer

	sessionStore session.Store
	now          func() time.Time
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewServiceFromConfig(context.Background(), config)
}

// NewServiceFromConfig opens the store and picks in-memory or Redis
// backends for sessions and the login limiter.
func NewServiceFromConfig(ctx context.Context, config *Config) (*Service, error) {
	evalStore, err := NewStore(config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	var (
		sessionStore session.Store
		limiter      ratelimit.Limiter
	)
	if config.Session.RedisURL != "" {
		rs, err := session.NewRedisStore(ctx, config.Session.RedisURL)
		if err != nil {
			evalStore.Close()
			return nil, fmt.Errorf("failed to init session store: %w", err)
		}
		rl, err := ratelimit.NewRedisLimiter(ctx, config.Session.RedisURL, "login",
			config.LoginLimit.MaxAttempts, config.LoginWindow())
		if err != nil {
			evalStore.Close()
			rs.Close()
			return nil, fmt.Errorf("failed to init login limiter: %w", err)
		}
		sessionStore, limiter = rs, rl
	} else {
		sessionStore = session.NewMemoryStore()
		limiter = ratelimit.NewMemoryLimiter(config.LoginLimit.MaxAttempts, config.LoginWindow())
	}

	service, err := New(config, evalStore, sessionStore, limiter)
	if err != nil {
		evalStore.Close()
		sessionStore.Close()
		limiter.Close()
		return nil, err
	}
	return service, nil
}

// New wires a Service from already-built backends.
func New(config *Config, evalStore store.EvaluationStore, sessionStore session.Store, limiter ratelimit.Limiter) (*Service, error) {
	sessions, err := session.NewManager(sessionStore, session.Options{
		Secret:     config.Session.Secret,
		TTL:        config.SessionTTL(),
		CookieName: config.Session.CookieName,
		Secure:     config.Server.SecureCookies,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}

	auth, err := NewTeacherAuth(config.Auth.AccessCode)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	return &Service{
		Config:       config,
		Store:        evalStore,
		Sessions:     sessions,
		Limiter:      limiter,
		Auth:         auth,
		Hasher:       pin.NewHasher(config.Pin.Pepper),
		Sanitizer:    sanitize.New(),
		sessionStore: sessionStore,
		now:          time.Now,
	}, nil
}

// CreateEvaluation sanitizes and validates the form, then stores one record.
// The returned evaluation carries the assigned ID.
func (s *Service) CreateEvaluation(ctx context.Context, form models.EvaluationForm) (*models.Evaluation, error) {
	clean := models.EvaluationForm{
		StudentName: s.Sanitizer.Clean(form.StudentName),
		StudentID:   s.Sanitizer.Clean(form.StudentID),
		Course:      s.Sanitizer.Clean(form.Course),
		Date:        s.Sanitizer.Clean(form.Date),
		Score:       strings.TrimSpace(form.Score),
		Comments:    s.Sanitizer.Clean(form.Comments),
		Pin:         pin.Normalize(form.Pin),
	}

	if err := clean.Validate(); err != nil {
		return nil, validationErrorFrom(err)
	}

	if n := utf8.RuneCountInString(clean.Pin); n < s.Config.Pin.MinLength || n > s.Config.Pin.MaxLength {
		return nil, &ValidationError{
			Field: "view_code",
			Message: fmt.Sprintf("El código de consulta debe tener entre %d y %d caracteres",
				s.Config.Pin.MinLength, s.Config.Pin.MaxLength),
		}
	}

	digest := s.Hasher.Digest(clean.Pin)
	if _, err := s.Store.FindByPinDigest(ctx, digest); err == nil {
		return nil, errPinInUse
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	score := models.ParseScore(clean.Score)
	if score == nil && clean.Score != "" {
		logger.Debug.Printf("Score %q is not numeric, storing it empty", clean.Score)
	}

	now := s.now().UTC()
	evaluation := &models.Evaluation{
		StudentName: clean.StudentName,
		StudentID:   clean.StudentID,
		Course:      clean.Course,
		Date:        clean.Date,
		Score:       score,
		Comments:    clean.Comments,
		PinDigest:   digest,
		PinHint:     pin.Hint(clean.Pin),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.Store.CreateEvaluation(ctx, evaluation); err != nil {
		// a concurrent create took the pin between the check and the insert
		if errors.Is(err, store.ErrDuplicatePin) {
			return nil, errPinInUse
		}
		return nil, err
	}
	return evaluation, nil
}

func (s *Service) ListEvaluations(ctx context.Context, search string) ([]models.EvaluationSummary, error) {
	return s.Store.ListEvaluations(ctx, store.ListFilter{
		Search: strings.TrimSpace(search),
		Limit:  s.Config.List.Limit,
	})
}

func (s *Service) GetEvaluation(ctx context.Context, id int64) (*models.Evaluation, error) {
	return s.Store.GetEvaluation(ctx, id)
}

func (s *Service) DeleteEvaluation(ctx context.Context, id int64) error {
	return s.Store.DeleteEvaluation(ctx, id)
}

// FindByPin looks a record up by the digest of the code a student typed.
func (s *Service) FindByPin(ctx context.Context, rawPin string) (*models.Evaluation, error) {
	code := pin.Normalize(rawPin)
	if code == "" {
		return nil, store.ErrNotFound
	}
	return s.Store.FindByPinDigest(ctx, s.Hasher.Digest(code))
}

func (s *Service) ExportAll(ctx context.Context) ([]models.Evaluation, error) {
	return s.Store.ExportEvaluations(ctx)
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if s.sessionStore != nil {
		if err := s.sessionStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sessions: %w", err))
		}
	}
	if s.Limiter != nil {
		if err := s.Limiter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("limiter: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %w", errors.Join(errs...))
	}
	return nil
}
