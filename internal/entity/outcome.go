package entity

import "time"

// SubmissionOutcome accumulates the result of each step of one intake
// submission. Non-fatal failures land in Errors in the order they happened.
type SubmissionOutcome struct {
	ClientFound        bool     `json:"clientFound"`
	ClientSaved        bool     `json:"clientSaved"`
	ClientID           string   `json:"clientId,omitempty"`
	Tagged             bool     `json:"tagged"`
	ConsentSigUploaded bool     `json:"consentSigUploaded"`
	IntakeSigUploaded  bool     `json:"intakeSigUploaded"`
	QuestionnaireSent  bool     `json:"questionnaireSent"`
	BizEmail           bool     `json:"bizEmail"`
	PatientEmail       bool     `json:"patientEmail"`
	Errors             []string `json:"errors"`
}

func NewSubmissionOutcome() *SubmissionOutcome {
	return &SubmissionOutcome{Errors: []string{}}
}

func (o *SubmissionOutcome) AddError(label string, err error) {
	o.Errors = append(o.Errors, label+": "+err.Error())
}

func (o *SubmissionOutcome) SignaturesUploaded() bool {
	return o.ConsentSigUploaded || o.IntakeSigUploaded
}

// Snapshot returns a copy that does not share the error slice.
func (o *SubmissionOutcome) Snapshot() SubmissionOutcome {
	cp := *o
	cp.Errors = append([]string{}, o.Errors...)
	return cp
}

// OutcomeRecord is what operators see for a past submission.
type OutcomeRecord struct {
	ID      string            `json:"id"`
	Time    time.Time         `json:"time"`
	Outcome SubmissionOutcome `json:"log"`
	Error   string            `json:"error,omitempty"`
}
