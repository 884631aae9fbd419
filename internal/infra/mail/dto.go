package mail

import "context"

// Message is one outgoing email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// Transport delivers a Message. ResendSender and SMTPSender implement it.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Practice is the contact info printed in emails and used as the inbox.
type Practice struct {
	Name  string
	Inbox string
	Phone string
	From  string
}

type Consents struct {
	Treatment bool
	HIPAA     bool
	Medical   bool
	Financial bool
}

// IntakeNotice is everything the two intake emails show.
type IntakeNotice struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Date            string
	Time            string
	Services        []string
	MedicalHistory  string
	SurgicalHistory string
	Medications     string
	Allergies       string
	ClinicianNotes  string
	Consents        Consents
	SignatureMethod string
	CardBrand       string
	CardLast4       string

	ClientID           string
	ClientSaved        bool
	SignaturesUploaded bool

	AdditionalPatients []string
}
