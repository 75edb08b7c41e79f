package controllers

import (
	"mime/multipart"
	"net/http"
	"patron-review-api/config"
	"patron-review-api/middleware"
	"patron-review-api/monitor"
	"patron-review-api/services"

	"github.com/gin-gonic/gin"
)

func newApplicantService() *services.ApplicantService {
	var mailer services.Mailer
	if config.App.MailEnabled() {
		mailer = services.MailerFunc(config.SendMail)
	}
	svc := services.NewApplicantService(nil, config.App.FilesDir, config.App.ApplicantEmailDomains, mailer)
	svc.Now = now
	return svc
}

// POST /applicant/submit (multipart: email, full_name, *_file)
func SubmitApplication(c *gin.Context) {
	session, err := middleware.EnsureSessionID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	in := services.SubmitInput{
		SessionID: session.ID,
		Email:     firstValue(form.Value, "email"),
		FullName:  firstValue(form.Value, "full_name"),
	}

	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, slot := range services.DocumentSlots {
		headers := form.File[slot.Field]
		if len(headers) == 0 {
			continue
		}
		header := headers[0]
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file " + header.Filename})
			return
		}
		opened = append(opened, f)
		in.Documents = append(in.Documents, services.UploadedDocument{
			Field:       slot.Field,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     f,
		})
	}

	application, err := newApplicantService().Submit(in)
	if err != nil {
		monitor.SubmissionsTotal.WithLabelValues("rejected").Inc()
		respondError(c, err)
		return
	}
	monitor.SubmissionsTotal.WithLabelValues("accepted").Inc()
	c.JSON(http.StatusOK, application)
}

// GET /applicant/my-application
func GetMyApplication(c *gin.Context) {
	session := middleware.CurrentSession(c)
	application, err := newApplicantService().MyApplication(session.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, application)
}

func firstValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
