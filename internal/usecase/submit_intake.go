package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/healingsoulutions/intake-api/internal/entity"
	"github.com/healingsoulutions/intake-api/internal/infra/integration/intakeq"
	"github.com/healingsoulutions/intake-api/internal/infra/mail"
	"go.uber.org/zap"
)

const (
	serviceRecords = "intakeq"
	serviceEmail   = "email"

	SubmissionMessage = "Intake submitted to HIPAA-secure server."
)

// DefaultTags are applied to every saved client when no tags are configured.
var DefaultTags = []string{"Website Booking", "Online Intake"}

// SubmitIntakeOptions switches the optional steps on and off. An empty
// QuestionnaireID skips the questionnaire; a nil EmailService skips both
// emails.
type SubmitIntakeOptions struct {
	Tags            []string
	QuestionnaireID string
	PracticePhone   string
	PracticeEmail   string
	Location        *time.Location
	OnStep          StepObserver
	Now             func() time.Time
}

type SubmitIntakeUseCase struct {
	Records RecordSystem
	Email   EmailService
	History OutcomeRecorder
	opts    SubmitIntakeOptions
	log     *zap.Logger
}

func NewSubmitIntakeUseCase(
	records RecordSystem,
	email EmailService,
	history OutcomeRecorder,
	opts SubmitIntakeOptions,
	log *zap.Logger,
) *SubmitIntakeUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Tags == nil {
		opts.Tags = DefaultTags
	}
	if opts.Location == nil {
		opts.Location = PracticeLocation()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SubmitIntakeUseCase{
		Records: records,
		Email:   email,
		History: history,
		opts:    opts,
		log:     log.Named("submit_intake"),
	}
}

func (uc *SubmitIntakeUseCase) Execute(ctx context.Context, sub entity.IntakeSubmission) (out *SubmitIntakeOutput, err error) {
	if fields := ValidateStruct(sub); len(fields) > 0 {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: "Name and email are required.",
			Fields:  fields,
		}
	}

	if uc.Records == nil {
		return nil, &TechnicalError{
			Code:    CodeNotConfigured,
			Message: "Record system not configured.",
		}
	}

	now := uc.opts.Now()
	outcome := entity.NewSubmissionOutcome()
	id := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			uc.log.Error("submission panicked",
				zap.String("submission_id", id),
				zap.Any("panic", r),
			)
			uc.remember(entity.OutcomeRecord{
				ID:      id,
				Time:    now,
				Outcome: outcome.Snapshot(),
				Error:   fmt.Sprint(r),
			})
			out = nil
			err = &TechnicalError{
				Code:    CodeSubmissionPanic,
				Message: fmt.Sprintf("Submission failed. Please call %s.", uc.opts.PracticePhone),
			}
		}
	}()

	pipeline := uc.buildPipeline(sub, now, outcome)
	runErr := pipeline.Execute(ctx)

	uc.remember(entity.OutcomeRecord{ID: id, Time: now, Outcome: outcome.Snapshot()})
	uc.log.Info("submission finished",
		zap.String("submission_id", id),
		zap.String("client_id", outcome.ClientID),
		zap.Bool("client_saved", outcome.ClientSaved),
		zap.Bool("tagged", outcome.Tagged),
		zap.Bool("consent_sig", outcome.ConsentSigUploaded),
		zap.Bool("intake_sig", outcome.IntakeSigUploaded),
		zap.Int("errors", len(outcome.Errors)),
	)

	if runErr != nil || !outcome.ClientSaved {
		return nil, &TechnicalError{
			Code: CodeClientSaveFailed,
			Message: fmt.Sprintf("Could not save your record. Please call %s or email %s.",
				uc.opts.PracticePhone, uc.opts.PracticeEmail),
			Detail: outcome.Snapshot(),
		}
	}

	return &SubmitIntakeOutput{
		Success:  true,
		ClientID: outcome.ClientID,
		Message:  SubmissionMessage,
		Saved: SavedSummary{
			Client:     outcome.ClientSaved,
			Signatures: outcome.SignaturesUploaded(),
			Tags:       outcome.Tagged,
		},
		Outcome: outcome.Snapshot(),
	}, nil
}

func (uc *SubmitIntakeUseCase) buildPipeline(sub entity.IntakeSubmission, now time.Time, outcome *entity.SubmissionOutcome) *Pipeline {
	p := NewPipeline(outcome, uc.opts.OnStep, uc.log)
	hasClient := func() bool { return outcome.ClientID != "" }

	record := BuildRecord(sub, now, uc.opts.Location)
	p.AddStep(Step{
		Name:    "client_save",
		Label:   "Client save",
		Service: serviceRecords,
		Fatal:   true,
		Fn: func(ctx context.Context) error {
			return uc.saveClient(ctx, sub, record, outcome)
		},
	})

	p.AddStep(Step{
		Name:    "tags",
		Label:   "Tags",
		Service: serviceRecords,
		When:    func() bool { return hasClient() && len(uc.opts.Tags) > 0 },
		Fn: func(ctx context.Context) error {
			for _, tag := range uc.opts.Tags {
				if err := uc.Records.AddTag(ctx, outcome.ClientID, tag); err != nil {
					return err
				}
			}
			outcome.Tagged = true
			return nil
		},
	})

	for _, sig := range sub.Signatures(FileStamp(now)) {
		p.AddStep(uc.signatureStep(sig, outcome, hasClient))
	}

	p.AddStep(Step{
		Name:    "questionnaire",
		Label:   "Questionnaire",
		Service: serviceRecords,
		When:    func() bool { return uc.opts.QuestionnaireID != "" && hasClient() },
		Fn: func(ctx context.Context) error {
			err := uc.Records.SendQuestionnaire(ctx, intakeq.SendQuestionnaireInput{
				QuestionnaireID: uc.opts.QuestionnaireID,
				ClientID:        outcome.ClientID,
				ClientName:      sub.FullName(),
				ClientEmail:     sub.Email,
			})
			if err != nil {
				return err
			}
			outcome.QuestionnaireSent = true
			return nil
		},
	})

	p.AddStep(Step{
		Name:    "biz_email",
		Label:   "Biz email",
		Service: serviceEmail,
		When:    func() bool { return uc.Email != nil },
		Fn: func(ctx context.Context) error {
			if err := uc.Email.SendPracticeNotification(ctx, buildNotice(sub, outcome)); err != nil {
				return err
			}
			outcome.BizEmail = true
			return nil
		},
	})

	p.AddStep(Step{
		Name:    "patient_email",
		Label:   "Patient email",
		Service: serviceEmail,
		When:    func() bool { return uc.Email != nil && strings.TrimSpace(sub.Email) != "" },
		Fn: func(ctx context.Context) error {
			if err := uc.Email.SendPatientConfirmation(ctx, buildNotice(sub, outcome)); err != nil {
				return err
			}
			outcome.PatientEmail = true
			return nil
		},
	})

	return p
}

// saveClient resolves the patient by email and writes the record. An existing
// client keeps its notes and gets the new record appended.
func (uc *SubmitIntakeUseCase) saveClient(ctx context.Context, sub entity.IntakeSubmission, record string, outcome *entity.SubmissionOutcome) error {
	found, err := uc.Records.SearchClients(ctx, sub.Email)
	if err != nil {
		return err
	}

	input := intakeq.SaveClientInput{
		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		Email:     sub.Email,
		Phone:     sub.Phone,
		Address:   sub.Address,
		Notes:     record,
	}

	if existing := matchByEmail(found, sub.Email); existing != nil {
		outcome.ClientFound = true
		outcome.ClientID = existing.ID
		input.ClientID = existing.ID
		input.Notes = entity.AppendNotes(existing.Notes, record)
		uc.log.Info("updating existing client", zap.String("client_id", existing.ID))
	}

	saved, err := uc.Records.SaveClient(ctx, input)
	if err != nil {
		return err
	}
	outcome.ClientSaved = true

	if outcome.ClientID == "" && saved != nil {
		outcome.ClientID = saved.ID
	}
	return nil
}

func (uc *SubmitIntakeUseCase) signatureStep(sig entity.SignatureArtifact, outcome *entity.SubmissionOutcome, hasClient func() bool) Step {
	name, label := "consent_signature", "Consent signature"
	flag := &outcome.ConsentSigUploaded
	if sig.Kind == entity.SignatureKindIntake {
		name, label = "intake_signature", "Intake signature"
		flag = &outcome.IntakeSigUploaded
	}

	return Step{
		Name:    name,
		Label:   label,
		Service: serviceRecords,
		When:    hasClient,
		Fn: func(ctx context.Context) error {
			data, err := sig.Decode()
			if err != nil {
				return fmt.Errorf("decode %s: %w", sig.FileName, err)
			}
			err = uc.Records.UploadFile(ctx, outcome.ClientID, intakeq.FileUpload{
				FileName:    sig.FileName,
				ContentType: "image/png",
				Data:        data,
			})
			if err != nil {
				return err
			}
			*flag = true
			return nil
		},
	}
}

func (uc *SubmitIntakeUseCase) remember(rec entity.OutcomeRecord) {
	if uc.History != nil {
		uc.History.Record(rec)
	}
}

func matchByEmail(found []entity.RemoteClient, email string) *entity.RemoteClient {
	want := strings.ToLower(strings.TrimSpace(email))
	for i := range found {
		// Without an id the save would create a second client.
		if found[i].ID == "" {
			continue
		}
		if strings.ToLower(strings.TrimSpace(found[i].Email)) == want {
			return &found[i]
		}
	}
	return nil
}

func buildNotice(sub entity.IntakeSubmission, outcome *entity.SubmissionOutcome) mail.IntakeNotice {
	sigMethod := sub.Signature
	if sub.SignatureMethod() == entity.SignatureDrawn {
		sigMethod = "Drawn"
	}

	patients := make([]string, 0, len(sub.AdditionalPatients))
	for _, pt := range sub.AdditionalPatients {
		patients = append(patients, pt.FullName())
	}

	return mail.IntakeNotice{
		FirstName:       sub.FirstName,
		LastName:        sub.LastName,
		Email:           sub.Email,
		Phone:           sub.Phone,
		Date:            sub.Date,
		Time:            sub.Time,
		Services:        sub.Services,
		MedicalHistory:  sub.MedicalHistory,
		SurgicalHistory: sub.SurgicalHistory,
		Medications:     sub.Medications,
		Allergies:       sub.Allergies,
		ClinicianNotes:  sub.ClinicianNotes,
		Consents: mail.Consents{
			Treatment: sub.HasConsent(entity.ConsentTreatment),
			HIPAA:     sub.HasConsent(entity.ConsentHIPAA),
			Medical:   sub.HasConsent(entity.ConsentMedical),
			Financial: sub.HasConsent(entity.ConsentFinancial),
		},
		SignatureMethod:    sigMethod,
		CardBrand:          sub.CardBrand,
		CardLast4:          sub.CardLast4,
		ClientID:           outcome.ClientID,
		ClientSaved:        outcome.ClientSaved,
		SignaturesUploaded: outcome.SignaturesUploaded(),
		AdditionalPatients: patients,
	}
}
