package services

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"patron-review-api/config"
	"patron-review-api/models"
	"patron-review-api/utils"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DocumentSlot describes one of the fixed documents an applicant may upload.
type DocumentSlot struct {
	Field       string // multipart form field
	Filename    string // name on disk inside the applicant folder
	ContentType string // required declared content type
	Label       string
	path        func(*models.Application) **string
}

// DocumentSlots lists the upload slots in form order.
var DocumentSlots = []DocumentSlot{
	{Field: "cv_file", Filename: "cv.pdf", ContentType: ContentTypePDF, Label: "CV",
		path: func(a *models.Application) **string { return &a.CV }},
	{Field: "transcript_file", Filename: "transcript.xlsx", ContentType: ContentTypeXLSX, Label: "Transcript",
		path: func(a *models.Application) **string { return &a.Transcript }},
	{Field: "motivational_letter_file", Filename: "motivational-letter.pdf", ContentType: ContentTypePDF, Label: "Motivational Letter",
		path: func(a *models.Application) **string { return &a.MotivationalLetter }},
	{Field: "recommendation_letter_file", Filename: "recommendation-letter.pdf", ContentType: ContentTypePDF, Label: "Recommendation Letter",
		path: func(a *models.Application) **string { return &a.RecommendationLetter }},
	{Field: "almost_a_student_file", Filename: "almost-a-student.pdf", ContentType: ContentTypePDF, Label: "Almost A Student",
		path: func(a *models.Application) **string { return &a.AlmostAStudent }},
}

// Stored returns the stored relative path of the slot's document, or "".
func (d DocumentSlot) Stored(a models.Application) string {
	if p := *d.path(&a); p != nil {
		return *p
	}
	return ""
}

func slotByField(field string) (DocumentSlot, bool) {
	for _, slot := range DocumentSlots {
		if slot.Field == field {
			return slot, true
		}
	}
	return DocumentSlot{}, false
}

// UploadedDocument is one file received with a submission.
type UploadedDocument struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

type SubmitInput struct {
	SessionID string
	Email     string
	FullName  string
	Documents []UploadedDocument
}

// Mailer sends HTML mail.
type Mailer interface {
	Send(to []string, subject, html string) error
}

// MailerFunc adapts a plain function to Mailer.
type MailerFunc func(to []string, subject, html string) error

func (f MailerFunc) Send(to []string, subject, html string) error {
	return f(to, subject, html)
}

type ApplicantService struct {
	db           *gorm.DB
	windows      *TimeWindowService
	filesDir     string
	emailPattern *regexp.Regexp
	mailer       Mailer
	Now          func() time.Time
}

// NewApplicantService builds the service. mailer may be nil to skip
// confirmation mail.
func NewApplicantService(db *gorm.DB, filesDir string, emailDomains []string, mailer Mailer) *ApplicantService {
	if db == nil {
		db = config.DB
	}
	return &ApplicantService{
		db:           db,
		windows:      NewTimeWindowService(db),
		filesDir:     filesDir,
		emailPattern: utils.InstitutionalEmailPattern(emailDomains),
		mailer:       mailer,
		Now:          time.Now,
	}
}

// Submit creates the session's application, or updates it when the session
// resubmits under the same email.
func (s *ApplicantService) Submit(in SubmitInput) (*models.Application, error) {
	now := s.Now().UTC()

	window, err := s.windows.Current(now)
	if err != nil {
		return nil, err
	}
	if window == nil {
		return nil, ErrInvalidInput("Submission is currently closed")
	}

	in.Email = strings.TrimSpace(in.Email)
	in.FullName = utils.SanitizeInput(in.FullName)
	if !s.emailPattern.MatchString(in.Email) {
		return nil, ErrInvalidInput("Email %s is not an institutional address", in.Email)
	}
	if in.FullName == "" {
		return nil, ErrInvalidInput("Full name is required")
	}
	if in.SessionID == "" {
		return nil, ErrInvalidInput("Session is required to submit an application")
	}

	var existing *models.Application
	var byEmail models.Application
	if err := s.db.Where("email = ?", in.Email).First(&byEmail).Error; err == nil {
		existing = &byEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.SessionID != in.SessionID {
		return nil, ErrInvalidInput("Application with email %s already exists and belongs to another user", in.Email)
	}

	var sameSession int64
	if err := s.db.Model(&models.Application{}).Where("session_id = ?", in.SessionID).Count(&sameSession).Error; err != nil {
		return nil, err
	}
	if (sameSession >= 1 && existing == nil) || sameSession > 1 {
		return nil, ErrInvalidInput("You have already submitted an application")
	}

	for _, doc := range in.Documents {
		slot, ok := slotByField(doc.Field)
		if !ok {
			return nil, ErrInvalidInput("Unknown document field %s", doc.Field)
		}
		if doc.ContentType != slot.ContentType {
			return nil, ErrInvalidInput("File %s should be of type %s but is %s", doc.Filename, slot.ContentType, doc.ContentType)
		}
	}

	// Files are written before the row is committed and are not removed if the
	// commit fails.
	stored := make(map[string]string, len(in.Documents))
	for _, doc := range in.Documents {
		slot, _ := slotByField(doc.Field)
		rel, err := s.storeDocument(in.Email, slot, doc.Content)
		if err != nil {
			return nil, err
		}
		stored[slot.Field] = rel
	}

	var application models.Application
	if existing == nil {
		application = models.Application{
			SubmittedAt:  now,
			SessionID:    in.SessionID,
			Email:        in.Email,
			FullName:     in.FullName,
			TimeWindowID: window.ID,
		}
	} else {
		application = *existing
		application.FullName = in.FullName
	}
	for _, slot := range DocumentSlots {
		if rel, ok := stored[slot.Field]; ok {
			rel := rel
			*slot.path(&application) = &rel
		}
	}

	if err := s.db.Save(&application).Error; err != nil {
		return nil, err
	}

	s.sendConfirmation(application, existing != nil)
	return &application, nil
}

func (s *ApplicantService) storeDocument(email string, slot DocumentSlot, content io.Reader) (string, error) {
	folder, err := utils.ApplicantFolder(s.filesDir, email)
	if err != nil {
		return "", ErrInvalidInput("Invalid applicant folder for %s", email)
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create applicant folder: %w", err)
	}

	fullPath := filepath.Join(folder, slot.Filename)
	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", slot.Filename, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, content); err != nil {
		return "", fmt.Errorf("write %s: %w", slot.Filename, err)
	}

	rel, err := filepath.Rel(s.filesDir, fullPath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func (s *ApplicantService) sendConfirmation(a models.Application, updated bool) {
	if s.mailer == nil {
		return
	}
	subject := "Your application has been received"
	if updated {
		subject = "Your application has been updated"
	}

	var docs []string
	for _, slot := range DocumentSlots {
		if slot.Stored(a) != "" {
			docs = append(docs, slot.Label)
		}
	}
	body := renderMail(mailContent{
		Subject: subject,
		Paragraphs: []string{
			"Dear " + a.FullName + ",",
			"We have received your application. You can resubmit documents until the submission window closes.",
		},
		Meta: []mailMetaItem{
			{Label: "Application", Value: "#" + strconv.Itoa(a.ID)},
			{Label: "Email", Value: a.Email},
			{Label: "Submitted at", Value: a.SubmittedAt.UTC().Format("2006-01-02 15:04 MST")},
			{Label: "Documents", Value: strings.Join(docs, "\n")},
		},
	})

	if err := s.mailer.Send([]string{a.Email}, subject, body); err != nil {
		slog.Warn("failed to send application confirmation", "application_id", a.ID, "error", err)
	}
}

// MyApplication returns the application submitted from sessionID.
func (s *ApplicantService) MyApplication(sessionID string) (*models.Application, error) {
	if sessionID == "" {
		return nil, ErrNotFound("Application not found")
	}
	var application models.Application
	if err := s.db.Where("session_id = ?", sessionID).First(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("Application not found")
		}
		return nil, err
	}
	return &application, nil
}

// List returns applications submitted inside interval, oldest first.
func (s *ApplicantService) List(interval *Interval) ([]models.Application, error) {
	var all []models.Application
	if err := s.db.Find(&all).Error; err != nil {
		return nil, err
	}
	return FilterApplications(all, interval), nil
}

func (s *ApplicantService) Get(id int) (*models.Application, error) {
	var application models.Application
	if err := s.db.First(&application, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("Application not found")
		}
		return nil, err
	}
	return &application, nil
}

// Delete removes an application with its ratings and rankings. Stored files
// are left on disk.
func (s *ApplicantService) Delete(id int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var application models.Application
		if err := tx.First(&application, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("Application not found")
			}
			return err
		}
		return deleteApplications(tx, []int{application.ID})
	})
}

// FilterApplications keeps applications submitted inside interval, sorted by
// submission time.
func FilterApplications(apps []models.Application, interval *Interval) []models.Application {
	out := make([]models.Application, 0, len(apps))
	for _, a := range apps {
		if interval.Contains(a.SubmittedAt) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out
}
