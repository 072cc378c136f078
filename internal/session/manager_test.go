package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	m, err := NewManager(store, Options{Secret: "test-secret-0123456789"})
	require.NoError(t, err)
	return m, store
}

// login performs MarkTeacherAuthenticated and returns the issued cookie.
func login(t *testing.T, m *Manager, r *http.Request) *http.Cookie {
	rec := httptest.NewRecorder()
	require.NoError(t, m.MarkTeacherAuthenticated(rec, r, ""))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func requestWith(cookie *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	return r
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(NewMemoryStore(), Options{})
	assert.Error(t, err)
}

func TestMarkTeacherAuthenticated(t *testing.T) {
	m, _ := newTestManager(t)

	assert.False(t, m.IsTeacherAuthenticated(requestWith(nil)))

	cookie := login(t, m, requestWith(nil))
	assert.Equal(t, DefaultCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int(DefaultTTL.Seconds()), cookie.MaxAge)

	assert.True(t, m.IsTeacherAuthenticated(requestWith(cookie)))
}

func TestLoginIssuesFreshSessionID(t *testing.T) {
	m, store := newTestManager(t)

	first := login(t, m, requestWith(nil))
	second := login(t, m, requestWith(first))

	assert.NotEqual(t, first.Value, second.Value)
	assert.False(t, m.IsTeacherAuthenticated(requestWith(first)))
	assert.True(t, m.IsTeacherAuthenticated(requestWith(second)))
	assert.Len(t, store.sessions, 1)
}

func TestTamperedCookieIsRejected(t *testing.T) {
	m, _ := newTestManager(t)
	cookie := login(t, m, requestWith(nil))

	tampered := *cookie
	tampered.Value = cookie.Value[:len(cookie.Value)-2] + "xx"
	assert.False(t, m.IsTeacherAuthenticated(requestWith(&tampered)))

	other, err := NewManager(NewMemoryStore(), Options{Secret: "a-different-secret-456"})
	require.NoError(t, err)
	assert.False(t, other.IsTeacherAuthenticated(requestWith(cookie)))
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	m, _ := newTestManager(t)
	start := time.Now()
	m.now = func() time.Time { return start }

	cookie := login(t, m, requestWith(nil))

	m.now = func() time.Time { return start.Add(DefaultTTL - time.Minute) }
	assert.True(t, m.IsTeacherAuthenticated(requestWith(cookie)))

	m.now = func() time.Time { return start.Add(DefaultTTL + time.Minute) }
	assert.False(t, m.IsTeacherAuthenticated(requestWith(cookie)))
}

func TestDestroy(t *testing.T) {
	m, store := newTestManager(t)
	cookie := login(t, m, requestWith(nil))

	rec := httptest.NewRecorder()
	require.NoError(t, m.Destroy(rec, requestWith(cookie)))

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
	assert.Empty(t, store.sessions)
	assert.False(t, m.IsTeacherAuthenticated(requestWith(cookie)))
}

func TestFlash(t *testing.T) {
	m, _ := newTestManager(t)

	t.Run("without session is a no-op", func(t *testing.T) {
		require.NoError(t, m.SetFlash(requestWith(nil), "hola"))
		assert.Empty(t, m.PopFlash(requestWith(nil)))
	})

	t.Run("pop clears the message", func(t *testing.T) {
		cookie := login(t, m, requestWith(nil))
		require.NoError(t, m.SetFlash(requestWith(cookie), "Evaluación eliminada"))

		assert.Equal(t, "Evaluación eliminada", m.PopFlash(requestWith(cookie)))
		assert.Empty(t, m.PopFlash(requestWith(cookie)))
		assert.True(t, m.IsTeacherAuthenticated(requestWith(cookie)))
	})
}

func TestRequireTeacher(t *testing.T) {
	m, _ := newTestManager(t)
	called := false
	h := m.RequireTeacher(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("redirects anonymous requests", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWith(nil))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Empty(t, rec.Body.String())
		assert.False(t, called)
	})

	t.Run("passes teachers through", func(t *testing.T) {
		cookie := login(t, m, requestWith(nil))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWith(cookie))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a", &Data{Teacher: true, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, got.Teacher)

	s.now = func() time.Time { return now.Add(time.Hour) }
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()

	s, err := NewRedisStore(ctx, redisURL)
	require.NoError(t, err)
	defer s.Close()

	now := time.Now()
	id := "test-" + now.Format("150405.000000")
	require.NoError(t, s.Save(ctx, id, &Data{Teacher: true, Flash: "hola", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Teacher)
	assert.Equal(t, "hola", got.Flash)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}
