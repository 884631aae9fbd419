package usecase

import (
	"context"

	"github.com/healingsoulutions/intake-api/internal/entity"
	"github.com/healingsoulutions/intake-api/internal/infra/integration/intakeq"
	"github.com/healingsoulutions/intake-api/internal/infra/integration/stripe"
	"github.com/healingsoulutions/intake-api/internal/infra/mail"
)

// RecordSystem is the practice-management API holding the patient record.
type RecordSystem interface {
	SearchClients(ctx context.Context, query string) ([]entity.RemoteClient, error)
	SaveClient(ctx context.Context, input intakeq.SaveClientInput) (*entity.RemoteClient, error)
	AddTag(ctx context.Context, clientID, tag string) error
	UploadFile(ctx context.Context, clientID string, file intakeq.FileUpload) error
	SendQuestionnaire(ctx context.Context, input intakeq.SendQuestionnaireInput) error
}

type EmailService interface {
	SendPracticeNotification(ctx context.Context, notice mail.IntakeNotice) error
	SendPatientConfirmation(ctx context.Context, notice mail.IntakeNotice) error
}

// OutcomeRecorder keeps recent submission outcomes for operators.
type OutcomeRecorder interface {
	Record(rec entity.OutcomeRecord)
	Last() *entity.OutcomeRecord
	Recent(n int) []entity.OutcomeRecord
}

// CardVault is the payment processor side of card-on-file verification.
type CardVault interface {
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
	CreateCustomer(ctx context.Context, input stripe.CreateCustomerInput) (string, error)
	CreateSetupIntent(ctx context.Context, input stripe.SetupIntentInput) (*stripe.SetupIntent, error)
	GetSetupIntent(ctx context.Context, id string) (*stripe.SetupIntent, error)
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
	ChargeCard(ctx context.Context, input stripe.ChargeInput) (*stripe.PaymentIntent, error)
	Refund(ctx context.Context, paymentIntentID string) error
	GetCard(ctx context.Context, paymentMethodID string) (*stripe.Card, error)
}
