package controllers

import (
	"net/http"
	"os"
	"patron-review-api/config"
	"patron-review-api/utils"
	"strings"

	"github.com/gin-gonic/gin"
)

// GET /files/*path
func ServeFile(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("path"), "/")
	full, err := utils.ResolveInRoot(config.App.FilesDir, rel)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Path not in static files folder."})
		return
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	filename := utils.InlineFilename(rel)
	if strings.Contains(c.GetHeader("Referer"), "/docs") {
		c.FileAttachment(full, filename)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.File(full)
}
