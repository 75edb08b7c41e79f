package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "session"
	SessionMaxAge     = 14 * 24 * time.Hour

	sessionContextKey        = "session"
	sessionManagerContextKey = "sessionManager"
)

// Session is the signed state carried in the session cookie. ID identifies
// the browser for applicant submissions; PatronID is set after login.
type Session struct {
	ID       string `json:"sid,omitempty"`
	PatronID int    `json:"patron_id,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager signs and reads the session cookie.
type SessionManager struct {
	secret    []byte
	httpsOnly bool
	Now       func() time.Time
}

func NewSessionManager(secret string, httpsOnly bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), httpsOnly: httpsOnly, Now: time.Now}
}

// Encode signs s as an HS256 token.
func (m *SessionManager) Encode(s Session) (string, error) {
	now := m.Now()
	s.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(SessionMaxAge)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, s)
	return token.SignedString(m.secret)
}

// Decode verifies a token produced by Encode.
func (m *SessionManager) Decode(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Session{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.Now))
	if err != nil {
		return nil, err
	}
	session, ok := token.Claims.(*Session)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session claims")
	}
	return session, nil
}

// Middleware loads the session cookie into the request context. A missing or
// invalid cookie yields an empty session.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := &Session{}
		if raw, err := c.Cookie(SessionCookieName); err == nil && raw != "" {
			if decoded, err := m.Decode(raw); err == nil {
				session = decoded
			}
		}
		c.Set(sessionContextKey, session)
		c.Set(sessionManagerContextKey, m)
		c.Next()
	}
}

// Save writes s back to the cookie.
func (m *SessionManager) Save(c *gin.Context, s *Session) error {
	value, err := m.Encode(*s)
	if err != nil {
		return err
	}
	c.Set(sessionContextKey, s)
	http.SetCookie(c.Writer, m.cookie(value, int(SessionMaxAge/time.Second)))
	return nil
}

// Clear expires the cookie and empties the session in the context.
func (m *SessionManager) Clear(c *gin.Context) {
	c.Set(sessionContextKey, &Session{})
	http.SetCookie(c.Writer, m.cookie("", -1))
}

func (m *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if m.httpsOnly {
		// the widget and frontend are served cross-site
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Partitioned = true
	}
	return cookie
}

// CurrentSession returns the request's session, never nil.
func CurrentSession(c *gin.Context) *Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return &Session{}
}

// SaveSession persists s through the manager installed by Middleware.
func SaveSession(c *gin.Context, s *Session) error {
	v, ok := c.Get(sessionManagerContextKey)
	if !ok {
		return errors.New("session middleware not installed")
	}
	return v.(*SessionManager).Save(c, s)
}

// ClearSession drops the session cookie.
func ClearSession(c *gin.Context) {
	if v, ok := c.Get(sessionManagerContextKey); ok {
		v.(*SessionManager).Clear(c)
	}
}

// EnsureSessionID gives the session a random ID if it has none and saves it.
func EnsureSessionID(c *gin.Context) (*Session, error) {
	s := CurrentSession(c)
	if s.ID != "" {
		return s, nil
	}
	s.ID = uuid.NewString()
	if err := SaveSession(c, s); err != nil {
		return nil, err
	}
	return s, nil
}
