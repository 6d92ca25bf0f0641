package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubrepo-backend/internal/infrastructure/session"
	"pubrepo-backend/pkg/jwt"
)

type memorySessionStore struct {
	sessions map[string]*session.Session
}

func (m *memorySessionStore) Create(_ context.Context, adminID uuid.UUID, email, role string) (*session.Session, error) {
	sess := &session.Session{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	m.sessions[sess.ID] = sess
	return sess, nil
}

func (m *memorySessionStore) Get(_ context.Context, sessionID string) (*session.Session, error) {
	return m.sessions[sessionID], nil
}

func (m *memorySessionStore) Destroy(_ context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}

const cookieName = "prs_session"

func gatedRouter(t *testing.T, store session.Store, tokens *jwt.Manager, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{SessionGate(cookieName, tokens, store)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString(CtxRole)})
	})
	r.GET("/gated", handlers...)
	return r
}

func do(r *gin.Engine, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionGate_MissingCookie(t *testing.T) {
	store := &memorySessionStore{sessions: map[string]*session.Session{}}
	r := gatedRouter(t, store, jwt.NewManager("secret"))

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
}

func TestSessionGate_BadSignature(t *testing.T) {
	store := &memorySessionStore{sessions: map[string]*session.Session{}}
	r := gatedRouter(t, store, jwt.NewManager("secret"))

	forged, err := jwt.NewManager("other-secret").GenerateSessionToken("sid", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, forged).Code)
}

func TestSessionGate_DestroyedSessionFailsWithValidToken(t *testing.T) {
	store := &memorySessionStore{sessions: map[string]*session.Session{}}
	tokens := jwt.NewManager("secret")
	r := gatedRouter(t, store, tokens)

	sess, err := store.Create(context.Background(), uuid.New(), "a@univ.edu", "admin")
	require.NoError(t, err)
	token, err := tokens.GenerateSessionToken(sess.ID, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(r, token).Code)

	// The store is authoritative: a valid signature on a destroyed
	// session is rejected.
	require.NoError(t, store.Destroy(context.Background(), sess.ID))
	assert.Equal(t, http.StatusUnauthorized, do(r, token).Code)
}

func TestRequireRole(t *testing.T) {
	store := &memorySessionStore{sessions: map[string]*session.Session{}}
	tokens := jwt.NewManager("secret")
	r := gatedRouter(t, store, tokens, RequireRole("super-admin"))

	moderator, err := store.Create(context.Background(), uuid.New(), "m@univ.edu", "moderator")
	require.NoError(t, err)
	modToken, err := tokens.GenerateSessionToken(moderator.ID, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(r, modToken).Code)

	super, err := store.Create(context.Background(), uuid.New(), "s@univ.edu", "super-admin")
	require.NoError(t, err)
	superToken, err := tokens.GenerateSessionToken(super.ID, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(r, superToken).Code)
}
