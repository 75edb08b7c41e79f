package controllers

import (
	"html/template"
	"log/slog"
	"net/http"
	"patron-review-api/config"
	"patron-review-api/middleware"
	"patron-review-api/models"
	"patron-review-api/monitor"
	"patron-review-api/services"

	"github.com/gin-gonic/gin"
)

type PasswordLoginRequest struct {
	TelegramID string `json:"telegram_id" form:"telegram_id" binding:"required"`
	Password   string `json:"password" form:"password" binding:"required"`
}

var widgetTemplate = template.Must(template.New("widget").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Telegram Login</title>
  <style>#me_json { white-space: pre-wrap; background: #f6f8fa; padding: 1em; border-radius: 4px; font-family: monospace; }</style>
</head>
<body>
  <input type="text" id="invite_secret" name="invite_secret" placeholder="Invite key">
  <script async src="https://telegram.org/js/telegram-widget.js?22"
          data-telegram-login="{{.BotUsername}}"
          data-size="medium"
          data-onauth="onTelegramAuth(user)"
          data-request-access="write"></script>
  <h3>Your /me JSON:</h3>
  <div id="me_json">Not logged in yet</div>
  <script>
    const callbackURL = {{.CallbackURL}};
    const meURL = {{.MeURL}};

    function onTelegramAuth(user) {
      const invite = document.getElementById("invite_secret").value.trim();
      if (invite) {
        user.invite_secret = invite;
      }
      fetch(callbackURL + "?" + new URLSearchParams(user), { method: "POST", credentials: "include" })
        .then(r => {
          if (r.ok) { fetchMe(); } else { alert("Telegram data verification failed"); }
        })
        .catch(err => console.error(err));
    }

    function fetchMe() {
      fetch(meURL, { credentials: "include" })
        .then(r => { if (!r.ok) throw new Error(r.status); return r.json(); })
        .then(data => { document.getElementById("me_json").textContent = JSON.stringify(data, null, 2); })
        .catch(err => { document.getElementById("me_json").textContent = "Could not load /me: " + err; });
    }

    window.addEventListener("DOMContentLoaded", fetchMe);
  </script>
</body>
</html>
`))

// GET /auth/telegram-widget.html
func TelegramWidget(c *gin.Context) {
	c.Header("Content-Security-Policy", "frame-ancestors *")
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	err := widgetTemplate.Execute(c.Writer, gin.H{
		"BotUsername": config.App.BotUsername,
		"CallbackURL": "/auth/telegram-callback",
		"MeURL":       "/patron/me",
	})
	if err != nil {
		slog.Error("failed to render login widget", "error", err)
	}
}

// POST /auth/telegram-callback?id=...&hash=...&auth_date=...[&invite_secret=...]
func TelegramCallback(c *gin.Context) {
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	invite := params["invite_secret"]
	delete(params, "invite_secret")

	svc := services.NewAuthService(nil, services.NewTelegramVerifier(config.App.BotToken), config.App.InviteSecret)
	patron, err := svc.LoginWithTelegram(params, invite)
	if err != nil {
		monitor.LoginsTotal.WithLabelValues("telegram", "failure").Inc()
		respondError(c, err)
		return
	}

	if !startPatronSession(c, patron) {
		return
	}
	monitor.LoginsTotal.WithLabelValues("telegram", "success").Inc()
	slog.Info("Patron authenticated", "patron_id", patron.ID, "method", "telegram")
	c.JSON(http.StatusOK, patron)
}

// POST /auth/login-by-password
func LoginByPassword(c *gin.Context) {
	var req PasswordLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewAuthService(nil, nil, "")
	patron, err := svc.LoginWithPassword(req.TelegramID, req.Password)
	if err != nil {
		monitor.LoginsTotal.WithLabelValues("password", "failure").Inc()
		slog.Info("Password login rejected", "telegram_id", req.TelegramID)
		respondError(c, err)
		return
	}

	if !startPatronSession(c, patron) {
		return
	}
	monitor.LoginsTotal.WithLabelValues("password", "success").Inc()
	slog.Info("Patron authenticated", "patron_id", patron.ID, "method", "password")
	c.JSON(http.StatusOK, patron)
}

// GET /auth/session
func GetSession(c *gin.Context) {
	session := middleware.CurrentSession(c)
	out := gin.H{}
	if session.ID != "" {
		out["sid"] = session.ID
	}
	if session.PatronID != 0 {
		out["patron_id"] = session.PatronID
	}
	c.JSON(http.StatusOK, out)
}

// POST /auth/logout
func Logout(c *gin.Context) {
	middleware.ClearSession(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func startPatronSession(c *gin.Context, patron *models.Patron) bool {
	session := middleware.CurrentSession(c)
	session.PatronID = patron.ID
	if err := middleware.SaveSession(c, session); err != nil {
		respondError(c, err)
		return false
	}
	return true
}
