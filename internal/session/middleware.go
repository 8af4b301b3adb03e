package session

import (
	"errors"
	"net/http"
	"time"

	"sitechat/pkg/logger"
	"sitechat/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CookieName  = "sitechat_session"
	TokenHeader = "X-Session-Token"
	contextKey  = "session"
)

// Manager binds a Session to every request. The session id travels in a
// signed token, as a cookie or as a bearer token.
type Manager struct {
	store  Store
	secret string
	ttl    time.Duration
	logger *zap.Logger
}

func NewManager(store Store, secret string, ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{store: store, secret: secret, ttl: ttl, logger: logger}
}

func (m *Manager) Store() Store {
	return m.store
}

// Middleware loads the caller's session, or starts a new one, and saves it
// after the handler if it changed.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := logger.WithTrace(ctx, m.logger)

		sess, found := m.load(c)
		if !found {
			sess = Session{ID: uuid.NewString()}
			token, err := util.GenerateSessionToken(sess.ID, m.secret, m.ttl)
			if err != nil {
				log.Error("Failed to sign session token", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "session unavailable"})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieName, token, int(m.ttl.Seconds()), "/", "", false, true)
			c.Header(TokenHeader, token)
		}

		before := sess
		c.Set(contextKey, &sess)
		c.Next()

		if found && sess == before {
			return
		}
		if sess.UserID == "" && sess.ProjectID == "" {
			return
		}
		if err := m.store.Save(ctx, sess); err != nil {
			log.Error("Failed to save session",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
		}
	}
}

func (m *Manager) load(c *gin.Context) (Session, bool) {
	token := util.ExtractToken(c.Request)
	if token == "" {
		token, _ = c.Cookie(CookieName)
	}
	if token == "" {
		return Session{}, false
	}

	id, err := util.ParseSessionToken(token, m.secret)
	if err != nil {
		m.logger.Debug("Rejected session token", zap.Error(err))
		return Session{}, false
	}

	sess, err := m.store.Get(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			logger.WithTrace(c.Request.Context(), m.logger).Warn("Failed to load session",
				zap.String("session_id", id),
				zap.Error(err),
			)
		}
		// the token is still valid; keep the id so the client's cookie keeps working
		return Session{ID: id}, true
	}
	return sess, true
}

// FromContext returns the request's session. Handlers mutate it in place.
func FromContext(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return &Session{}
}
