package monitor

import (
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// logTailBytes caps how much of the log file LogsHandler returns.
const logTailBytes = 64 << 10

// RegisterMonitorPage serves a small status page that polls /health and the
// admin log tail. The log tail needs an admin session cookie.
func RegisterMonitorPage(router *gin.Engine) {
	router.GET("/monitor", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>Review API Monitor</title>
  <style>
    body { background: #111; color: #ddd; font-family: sans-serif; padding: 20px; }
    #logs { background: #1b1b1b; padding: 1rem; max-height: 600px; overflow: auto; white-space: pre-wrap; }
    button { margin-left: 1rem; }
  </style>
</head>
<body>
  <h1>Review API Monitor</h1>
  <div id="status">Status: checking...</div>
  <h3>Logs <button onclick="toggleLive()" id="toggleBtn">Pause</button></h3>
  <pre id="logs">Loading logs...</pre>
  <script>
    let live = true;
    const logs = document.getElementById('logs');
    const status = document.getElementById('status');

    function fetchStatus() {
      fetch('/health')
        .then(res => res.json())
        .then(data => { status.textContent = 'Status: ' + (data.status === 'ok' ? '🟢 Online' : '🔴 Offline'); })
        .catch(() => { status.textContent = 'Status: 🔴 Offline'; });
    }

    function fetchLogs() {
      if (!live) return;
      fetch('/admin/logs', { credentials: 'include' })
        .then(res => res.ok ? res.text() : Promise.reject(res.status))
        .then(data => { logs.textContent = data; logs.scrollTop = logs.scrollHeight; })
        .catch(code => { logs.textContent = 'Could not load logs (' + code + '). Log in as an admin first.'; });
    }

    function toggleLive() {
      live = !live;
      document.getElementById('toggleBtn').textContent = live ? 'Pause' : 'Resume';
    }

    fetchStatus();
    fetchLogs();
    setInterval(fetchStatus, 5000);
    setInterval(fetchLogs, 5000);
  </script>
</body>
</html>`))
	})
}

// LogsHandler returns the last part of the log file at path as plain text.
// Mount it behind admin authorization.
func LogsHandler(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Log file not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		if offset := info.Size() - logTailBytes; offset > 0 {
			if _, err := f.Seek(offset, io.SeekStart); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
				return
			}
		}
		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
	}
}
