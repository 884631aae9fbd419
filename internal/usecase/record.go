package usecase

import (
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/healingsoulutions/intake-api/internal/entity"
)

const (
	ConsentFormVersion = "2025-02"

	recordRule   = "════════════════════════════════════════════════"
	recordFooter = "────────────────────────────────────────────────"

	easternLayout = "1/2/2006, 3:04:05 PM"
	utcLayout     = "2006-01-02T15:04:05.000Z"
)

// PracticeLocation is the zone used for the human timestamp in the record
// banner. It falls back to UTC if the zone database is unavailable.
func PracticeLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

var consentLines = []struct {
	key   string
	label string
}{
	{entity.ConsentTreatment, "Treatment Consent"},
	{entity.ConsentHIPAA, "HIPAA Privacy"},
	{entity.ConsentMedical, "Medical Release"},
	{entity.ConsentFinancial, "Financial Agreement"},
}

// BuildRecord renders the plain-text record stored in the client's notes.
func BuildRecord(sub entity.IntakeSubmission, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	var b recordBuilder
	b.line(recordRule)
	b.line("  WEBSITE INTAKE SUBMISSION — " + now.In(loc).Format(easternLayout) + " ET")
	b.line(recordRule)

	b.section("PATIENT")
	b.line("Name: " + sub.FirstName + " " + sub.LastName)
	b.line("Email: " + sub.Email)
	b.line("Phone: " + or(sub.Phone, "N/A"))
	b.line("Address: " + or(sub.Address, "N/A"))

	b.section("APPOINTMENT REQUEST")
	b.line("Date: " + or(sub.Date, "Not specified"))
	b.line("Time: " + or(sub.Time, "Not specified"))
	b.line("Services: " + joinOr(sub.Services, "General Consultation"))
	if sub.Notes != "" {
		b.line("Patient Notes: " + sub.Notes)
	}

	b.section("MEDICAL HISTORY")
	b.line("Medical History: " + or(sub.MedicalHistory, "None reported"))
	b.line("Surgical History: " + or(sub.SurgicalHistory, "None reported"))
	b.line("Current Medications: " + or(sub.Medications, "None reported"))
	b.line("Known Allergies: " + or(sub.Allergies, "None reported"))
	if sub.ClinicianNotes != "" {
		b.line("Notes for Clinician: " + sub.ClinicianNotes)
	}

	b.section("CONSENTS")
	for _, c := range consentLines {
		status := "NOT AGREED"
		if sub.HasConsent(c.key) {
			status = "AGREED"
		}
		l := c.label + ": " + status
		if ts := sub.ConsentSignedAt(c.key); ts != "" {
			l += "  [signed " + ts + "]"
		}
		b.line(l)
	}

	b.section("SIGNATURES")
	b.line("Consent E-Signature: " + sub.ConsentSignatureLabel())
	b.line("Consent Signature Type: " + or(sub.SignatureType, "N/A"))
	b.line("Intake Acknowledgment: " + yesNo(sub.IntakeAcknowledged))
	b.line("Intake Signature: " + sub.IntakeSignatureLabel())
	b.line("Intake Signature Type: " + or(sub.IntakeSignatureType, "N/A"))

	b.section("PAYMENT VERIFICATION")
	b.line("Card: " + or(sub.CardBrand, "N/A") + " ****" + or(sub.CardLast4, "N/A"))
	b.line("Cardholder: " + or(sub.CardHolderName, "N/A"))

	if n := len(sub.AdditionalPatients); n > 0 {
		b.section("ADDITIONAL PATIENTS (" + strconv.Itoa(n) + ")")
		for i, pt := range sub.AdditionalPatients {
			b.line("")
			b.line("  Patient " + strconv.Itoa(i+2) + ": " + pt.FirstName + " " + pt.LastName)
			b.line("  Services: " + joinOr(pt.Services, "Same as primary"))
			b.line("  Medical: " + or(pt.MedicalHistory, "None"))
			b.line("  Surgical: " + or(pt.SurgicalHistory, "None"))
			b.line("  Medications: " + or(pt.Medications, "None"))
			b.line("  Allergies: " + or(pt.Allergies, "None"))
			if pt.ClinicianNotes != "" {
				b.line("  Clinician Notes: " + pt.ClinicianNotes)
			}
		}
	}

	b.line("")
	b.line("Consent Form Version: " + ConsentFormVersion)
	b.line("UTC Timestamp: " + now.UTC().Format(utcLayout))
	b.line(recordFooter)

	return b.String()
}

// FileStamp turns a time into the filename-safe token used for uploads.
func FileStamp(now time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(now.UTC().Format(utcLayout))
}

type recordBuilder struct {
	lines []string
}

func (b *recordBuilder) line(s string) {
	b.lines = append(b.lines, s)
}

func (b *recordBuilder) section(title string) {
	b.line("")
	b.line("── " + title + " ──")
}

func (b *recordBuilder) String() string {
	return strings.Join(b.lines, "\n")
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}
