package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	templatesOnce sync.Once
	templates     *template.Template
	templatesErr  error

	stripPolicy = bluemonday.StrictPolicy()
)

var funcs = template.FuncMap{
	"join": strings.Join,
	"check": func(v bool) template.HTML {
		if v {
			return "&#10003;"
		}
		return "&#10007;"
	},
}

type viewData struct {
	IntakeNotice
	Practice Practice
}

func loadTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		templates, templatesErr = template.New("mail").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	})
	return templates, templatesErr
}

func render(name string, data viewData) (string, error) {
	t, err := loadTemplates()
	if err != nil {
		return "", fmt.Errorf("parse email templates: %w", err)
	}

	var body bytes.Buffer
	if err := t.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return body.String(), nil
}

// plain removes any markup a patient typed into a form field. The template
// escapes the result again, so entities are decoded first to avoid "&amp;amp;".
func plain(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

func sanitizeNotice(n IntakeNotice) IntakeNotice {
	n.FirstName = plain(n.FirstName)
	n.LastName = plain(n.LastName)
	n.Email = plain(n.Email)
	n.Phone = plain(n.Phone)
	n.Date = plain(n.Date)
	n.Time = plain(n.Time)
	n.MedicalHistory = plain(n.MedicalHistory)
	n.SurgicalHistory = plain(n.SurgicalHistory)
	n.Medications = plain(n.Medications)
	n.Allergies = plain(n.Allergies)
	n.ClinicianNotes = plain(n.ClinicianNotes)
	n.SignatureMethod = plain(n.SignatureMethod)
	n.CardBrand = plain(n.CardBrand)
	n.CardLast4 = plain(n.CardLast4)

	services := make([]string, len(n.Services))
	for i, s := range n.Services {
		services[i] = plain(s)
	}
	n.Services = services

	patients := make([]string, len(n.AdditionalPatients))
	for i, p := range n.AdditionalPatients {
		patients[i] = plain(p)
	}
	n.AdditionalPatients = patients
	return n
}
