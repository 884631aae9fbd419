package mail

import (
	"context"
	"fmt"
)

// Notifier renders the intake emails and hands them to a Transport.
type Notifier struct {
	transport Transport
	practice  Practice
}

func NewNotifier(transport Transport, practice Practice) *Notifier {
	return &Notifier{transport: transport, practice: practice}
}

// SendPracticeNotification tells the practice inbox about a new intake.
// Replies go to the patient.
func (n *Notifier) SendPracticeNotification(ctx context.Context, notice IntakeNotice) error {
	clean := sanitizeNotice(notice)
	body, err := render("practice_notification.html", viewData{IntakeNotice: clean, Practice: n.practice})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("New Intake: %s %s", clean.FirstName, clean.LastName)
	if clean.ClientID != "" {
		subject += " [#" + clean.ClientID + "]"
	}

	return n.transport.Send(ctx, Message{
		From:    n.practice.From,
		To:      []string{n.practice.Inbox},
		Subject: subject,
		HTML:    body,
		ReplyTo: notice.Email,
	})
}

// SendPatientConfirmation confirms the booking to the patient. Replies go to
// the practice inbox.
func (n *Notifier) SendPatientConfirmation(ctx context.Context, notice IntakeNotice) error {
	if notice.Email == "" {
		return fmt.Errorf("patient email is empty")
	}

	body, err := render("patient_confirmation.html", viewData{IntakeNotice: sanitizeNotice(notice), Practice: n.practice})
	if err != nil {
		return err
	}

	return n.transport.Send(ctx, Message{
		From:    n.practice.From,
		To:      []string{notice.Email},
		Subject: "Booking Confirmed - " + n.practice.Name,
		HTML:    body,
		ReplyTo: n.practice.Inbox,
	})
}
