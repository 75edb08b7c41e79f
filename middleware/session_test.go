package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSessionManager_EncodeDecode(t *testing.T) {
	m := NewSessionManager("secret", false)
	token, err := m.Encode(Session{ID: "abc", PatronID: 7})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := m.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "abc" || got.PatronID != 7 {
		t.Fatalf("decoded = %+v", got)
	}

	if _, err := NewSessionManager("other", false).Decode(token); err == nil {
		t.Fatal("token accepted with the wrong secret")
	}

	m.Now = func() time.Time { return time.Now().Add(SessionMaxAge + time.Hour) }
	if _, err := m.Decode(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestSessionManager_Cookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		httpsOnly bool
		sameSite  http.SameSite
	}{
		{"plain", false, http.SameSiteLaxMode},
		{"https", true, http.SameSiteNoneMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSessionManager("secret", tt.httpsOnly)
			router := gin.New()
			router.Use(m.Middleware())
			router.GET("/", func(c *gin.Context) {
				s, err := EnsureSessionID(c)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
					return
				}
				c.JSON(http.StatusOK, gin.H{"sid": s.ID})
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			cookies := w.Result().Cookies()
			if len(cookies) != 1 {
				t.Fatalf("expected one cookie, got %d", len(cookies))
			}
			cookie := cookies[0]
			if cookie.Name != SessionCookieName || !cookie.HttpOnly || cookie.SameSite != tt.sameSite || cookie.Secure != tt.httpsOnly {
				t.Fatalf("unexpected cookie: %+v", cookie)
			}

			session, err := m.Decode(cookie.Value)
			if err != nil || session.ID == "" {
				t.Fatalf("cookie does not carry a session id: %+v %v", session, err)
			}

			// the same cookie keeps the same id
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie.Value})
			w = httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if len(w.Result().Cookies()) != 0 {
				t.Fatal("existing session was rewritten")
			}
		})
	}
}

func TestMiddleware_IgnoresGarbageCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewSessionManager("secret", false)
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"patron_id": CurrentSession(c).PatronID})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-jwt"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != `{"patron_id":0}` {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}
