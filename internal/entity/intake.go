package entity

import "strings"

// Known consent flags collected by the booking form.
const (
	ConsentTreatment = "treatment"
	ConsentHIPAA     = "hipaa"
	ConsentMedical   = "medical"
	ConsentFinancial = "financial"
)

// Signing methods declared by the form for a signature.
const (
	SignatureTyped = "typed"
	SignatureDrawn = "drawn"

	drawnConsentMarker = "drawn-signature"
	drawnIntakeMarker  = "drawn_intake_sig"
)

// MedicalInfo is the medical/service shape shared by the primary patient and
// any additional patient on the same booking.
type MedicalInfo struct {
	Services        []string `json:"services"`
	MedicalHistory  string   `json:"medicalHistory"`
	SurgicalHistory string   `json:"surgicalHistory"`
	Medications     string   `json:"medications"`
	Allergies       string   `json:"allergies"`
	ClinicianNotes  string   `json:"clinicianNotes"`
}

type AdditionalPatient struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	MedicalInfo
}

func (p AdditionalPatient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// IntakeSubmission is the booking form payload. It is read-only for the
// duration of a request.
type IntakeSubmission struct {
	FirstName string `json:"fname" validate:"notblank"`
	LastName  string `json:"lname" validate:"notblank"`
	Email     string `json:"email" validate:"notblank"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`

	// Appointment
	Date  string `json:"date"`
	Time  string `json:"selTime"`
	Notes string `json:"notes"`

	MedicalInfo

	Consents          map[string]bool   `json:"consents"`
	ConsentTimestamps map[string]string `json:"consentTimestamps"`

	Signature           string `json:"signature"`
	SignatureType       string `json:"signatureType"`
	SignatureImageData  string `json:"signatureImageData"`
	IntakeAcknowledged  bool   `json:"intakeAcknowledged"`
	IntakeSignature     string `json:"intakeSignature"`
	IntakeSignatureType string `json:"intakeSignatureType"`
	IntakeSignatureData string `json:"intakeSignatureImageData"`

	// Card verification summary, never a full card number.
	CardBrand      string `json:"cardBrand"`
	CardLast4      string `json:"cardLast4"`
	CardHolderName string `json:"cardHolderName"`

	AdditionalPatients []AdditionalPatient `json:"additionalPatients"`
}

func (s IntakeSubmission) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

func (s IntakeSubmission) HasConsent(name string) bool {
	return s.Consents[name]
}

func (s IntakeSubmission) ConsentSignedAt(name string) string {
	return s.ConsentTimestamps[name]
}

// ConsentSignatureLabel is the human label for the consent e-signature. Drawn
// signatures arrive as a marker value and the image travels separately.
func (s IntakeSubmission) ConsentSignatureLabel() string {
	switch s.Signature {
	case "":
		return "NOT PROVIDED"
	case drawnConsentMarker:
		return "DRAWN (image file attached)"
	}
	return s.Signature
}

func (s IntakeSubmission) IntakeSignatureLabel() string {
	switch s.IntakeSignature {
	case "":
		return "NOT PROVIDED"
	case drawnIntakeMarker:
		return "DRAWN (image file attached)"
	}
	return s.IntakeSignature
}

// SignatureMethod reports how the consent e-signature was produced.
func (s IntakeSubmission) SignatureMethod() string {
	if s.Signature == drawnConsentMarker || s.SignatureType == SignatureDrawn {
		return SignatureDrawn
	}
	if s.Signature == "" {
		return ""
	}
	return SignatureTyped
}

// Signatures returns the signature artifacts that carry image data, in upload
// order: consent e-signature first, intake signature second.
func (s IntakeSubmission) Signatures(stamp string) []SignatureArtifact {
	var out []SignatureArtifact
	if s.SignatureImageData != "" {
		out = append(out, SignatureArtifact{
			Kind:      SignatureKindConsent,
			ImageData: s.SignatureImageData,
			FileName:  "consent-esignature-" + stamp + ".png",
		})
	}
	if s.IntakeSignatureData != "" {
		out = append(out, SignatureArtifact{
			Kind:      SignatureKindIntake,
			ImageData: s.IntakeSignatureData,
			FileName:  "intake-signature-" + stamp + ".png",
		})
	}
	return out
}
