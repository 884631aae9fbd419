package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/healingsoulutions/intake-api/internal/entity"
	"github.com/healingsoulutions/intake-api/internal/infra/integration/intakeq"
	"github.com/healingsoulutions/intake-api/internal/infra/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testPhone = "(585) 747-2215"
	testInbox = "info@healingsoulutions.care"
	sigBase64 = "cG5nLWJ5dGVz" // "png-bytes"
)

func testOptions() SubmitIntakeOptions {
	return SubmitIntakeOptions{
		PracticePhone: testPhone,
		PracticeEmail: testInbox,
		Location:      time.UTC,
		Now:           func() time.Time { return fixedNow },
	}
}

func newSubmitUC(records RecordSystem, email EmailService, history OutcomeRecorder, opts SubmitIntakeOptions) *SubmitIntakeUseCase {
	return NewSubmitIntakeUseCase(records, email, history, opts, nil)
}

func TestSubmitIntakeMissingIdentityMakesNoCalls(t *testing.T) {
	cases := map[string]func(*entity.IntakeSubmission){
		"no first name":     func(s *entity.IntakeSubmission) { s.FirstName = "" },
		"no last name":      func(s *entity.IntakeSubmission) { s.LastName = "" },
		"no email":          func(s *entity.IntakeSubmission) { s.Email = "" },
		"blank first name":  func(s *entity.IntakeSubmission) { s.FirstName = "  " },
		"everything absent": func(s *entity.IntakeSubmission) { *s = entity.IntakeSubmission{} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			records := new(MockRecordSystem)
			email := new(MockEmailService)
			history := &memoryRecorder{}
			sub := janeDoe()
			mutate(&sub)

			out, err := newSubmitUC(records, email, history, testOptions()).Execute(context.Background(), sub)

			assert.Nil(t, out)
			var de *DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, CodeValidation, de.Code)
			assert.Equal(t, "Name and email are required.", de.Message)
			assert.NotEmpty(t, de.Fields)
			records.AssertNotCalled(t, "SearchClients", mock.Anything, mock.Anything)
			records.AssertNotCalled(t, "SaveClient", mock.Anything, mock.Anything)
			email.AssertExpectations(t)
			assert.Empty(t, history.records)
		})
	}
}

func TestSubmitIntakeWithoutRecordSystemIsNotConfigured(t *testing.T) {
	_, err := newSubmitUC(nil, nil, nil, testOptions()).Execute(context.Background(), janeDoe())

	var te *TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeNotConfigured, te.Code)
}

func TestSubmitIntakeJaneDoeCreatesNewClient(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordSystem)
	history := &memoryRecorder{}
	sub := janeDoe()
	record := BuildRecord(sub, fixedNow, time.UTC)

	records.On("SearchClients", ctx, "jane@example.com").Return([]entity.RemoteClient{}, nil)
	records.On("SaveClient", ctx, intakeq.SaveClientInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Notes:     record,
	}).Return(&entity.RemoteClient{ID: "101"}, nil)
	records.On("AddTag", ctx, "101", "Website Booking").Return(nil)
	records.On("AddTag", ctx, "101", "Online Intake").Return(nil)

	out, err := newSubmitUC(records, nil, history, testOptions()).Execute(ctx, sub)

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "101", out.ClientID)
	assert.Equal(t, SubmissionMessage, out.Message)
	assert.Equal(t, SavedSummary{Client: true, Signatures: false, Tags: true}, out.Saved)

	assert.False(t, out.Outcome.ClientFound)
	assert.True(t, out.Outcome.ClientSaved)
	assert.True(t, out.Outcome.Tagged)
	assert.False(t, out.Outcome.ConsentSigUploaded)
	assert.False(t, out.Outcome.IntakeSigUploaded)
	assert.Empty(t, out.Outcome.Errors)

	records.AssertExpectations(t)
	records.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
	records.AssertNotCalled(t, "SendQuestionnaire", mock.Anything, mock.Anything)

	last := history.Last()
	require.NotNil(t, last)
	assert.Equal(t, fixedNow, last.Time)
	assert.Equal(t, "101", last.Outcome.ClientID)
	assert.NotEmpty(t, last.ID)
}

func TestSubmitIntakeExistingClientAppendsNotes(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordSystem)
	sub := janeDoe()
	record := BuildRecord(sub, fixedNow, time.UTC)

	records.On("SearchClients", ctx, "jane@example.com").Return([]entity.RemoteClient{
		{ID: "9", Email: "someone-else@example.com", Notes: "not this one"},
		{ID: "55", Email: " JANE@example.com", Notes: "previous visit"},
	}, nil)
	records.On("SaveClient", ctx, mock.MatchedBy(func(in intakeq.SaveClientInput) bool {
		return in.ClientID == "55" &&
			strings.HasPrefix(in.Notes, "previous visit") &&
			in.Notes == "previous visit\n\n"+record
	})).Return(&entity.RemoteClient{}, nil)
	records.On("AddTag", ctx, "55", mock.Anything).Return(nil)

	out, err := newSubmitUC(records, nil, nil, testOptions()).Execute(ctx, sub)

	require.NoError(t, err)
	assert.Equal(t, "55", out.ClientID)
	assert.True(t, out.Outcome.ClientFound)
	records.AssertExpectations(t)
}

func TestSubmitIntakeMatchWithoutIDIsTreatedAsNew(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordSystem)
	sub := janeDoe()
	record := BuildRecord(sub, fixedNow, time.UTC)

	records.On("SearchClients", ctx, "jane@example.com").Return([]entity.RemoteClient{
		{ID: "", Email: "jane@example.com", Notes: "orphaned notes"},
	}, nil)
	records.On("SaveClient", ctx, mock.MatchedBy(func(in intakeq.SaveClientInput) bool {
		return in.ClientID == "" && in.Notes == record
	})).Return(&entity.RemoteClient{ID: "77"}, nil)
	records.On("AddTag", ctx, "77", mock.Anything).Return(nil)

	out, err := newSubmitUC(records, nil, nil, testOptions()).Execute(ctx, sub)

	require.NoError(t, err)
	assert.Equal(t, "77", out.ClientID)
	assert.False(t, out.Outcome.ClientFound)
	records.AssertExpectations(t)
}

// fakeRecords is an in-memory record system keyed by email.
type fakeRecords struct {
	mu      sync.Mutex
	clients map[string]*entity.RemoteClient
	nextID  int
}

func (f *fakeRecords) SearchClients(_ context.Context, query string) ([]entity.RemoteClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.RemoteClient
	for _, c := range f.clients {
		if strings.Contains(c.Email, query) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRecords) SaveClient(_ context.Context, in intakeq.SaveClientInput) (*entity.RemoteClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := in.ClientID
	if id == "" {
		f.nextID++
		id = strconv.Itoa(f.nextID)
	}
	c := &entity.RemoteClient{ID: id, FirstName: in.FirstName, LastName: in.LastName, Email: in.Email, Notes: in.Notes}
	f.clients[id] = c
	cp := *c
	return &cp, nil
}

func (f *fakeRecords) AddTag(context.Context, string, string) error { return nil }

func (f *fakeRecords) UploadFile(context.Context, string, intakeq.FileUpload) error { return nil }

func (f *fakeRecords) SendQuestionnaire(context.Context, intakeq.SendQuestionnaireInput) error {
	return nil
}

func TestSubmitIntakeTwiceKeepsOneClient(t *testing.T) {
	records := &fakeRecords{clients: map[string]*entity.RemoteClient{}}
	uc := newSubmitUC(records, nil, nil, testOptions())

	first, err := uc.Execute(context.Background(), janeDoe())
	require.NoError(t, err)
	notesAfterFirst := records.clients[first.ClientID].Notes

	second, err := uc.Execute(context.Background(), janeDoe())
	require.NoError(t, err)

	assert.Equal(t, first.ClientID, second.ClientID)
	assert.Len(t, records.clients, 1)
	assert.True(t, second.Outcome.ClientFound)
	assert.True(t, strings.HasPrefix(records.clients[first.ClientID].Notes, notesAfterFirst+entity.NoteSeparator))
}

func TestSubmitIntakeClientSaveFailureStopsEverything(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordSystem)
	email := new(MockEmailService)
	history := &memoryRecorder{}
	sub := janeDoe()
	sub.SignatureImageData = sigBase64

	opts := testOptions()
	opts.QuestionnaireID = "q-1"

	records.On("SearchClients", ctx, "jane@example.com").Return([]entity.RemoteClient{}, nil)
	records.On("SaveClient", ctx, mock.Anything).Return(nil, errors.New("IntakeQ 500: internal"))

	out, err := newSubmitUC(records, email, history, opts).Execute(ctx, sub)

	assert.Nil(t, out)
	var te *TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeClientSaveFailed, te.Code)
	assert.Equal(t, "Could not save your record. Please call (585) 747-2215 or email info@healingsoulutions.care.", te.Message)

	detail, ok := te.Detail.(entity.SubmissionOutcome)
	require.True(t, ok)
	assert.False(t, detail.ClientSaved)
	assert.Equal(t, []string{"Client save: IntakeQ 500: internal"}, detail.Errors)

	records.AssertNotCalled(t, "AddTag", mock.Anything, mock.Anything, mock.Anything)
	records.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
	records.AssertNotCalled(t, "SendQuestionnaire", mock.Anything, mock.Anything)
	email.AssertNotCalled(t, "SendPracticeNotification", mock.Anything, mock.Anything)
	email.AssertNotCalled(t, "SendPatientConfirmation", mock.Anything, mock.Anything)

	require.NotNil(t, history.Last())
	assert.False(t, history.Last().Outcome.ClientSaved)
}

func TestSubmitIntakeLookupFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordSystem)
	records.On("SearchClients", ctx, "jane@example.com").Return(nil, errors.New("dial tcp: timeout"))

	_, err := newSubmitUC(records, nil, nil, testOptions()).Execute(ctx, janeDoe())

	assert.True(t, IsTechnicalError(err))
	records.AssertNotCalled(t, "SaveClient", mock.Anything, mock.Anything)
}

func TestSubmitIntakeSignatureFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordSystem)
	sub := janeDoe()
	sub.SignatureImageData = "data:image/png;base64," + sigBase64
	sub.IntakeSignatureData = sigBase64

	records.On("SearchClients", ctx, mock.Anything).Return([]entity.RemoteClient{}, nil)
	records.On("SaveClient", ctx, mock.Anything).Return(&entity.RemoteClient{ID: "7"}, nil)
	records.On("AddTag", ctx, "7", mock.Anything).Return(nil)
	records.On("UploadFile", ctx, "7", intakeq.FileUpload{
		FileName:    "consent-esignature-2025-03-01T15-04-05-123Z.png",
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	}).Return(errors.New("IntakeQ 413: too large"))
	records.On("UploadFile", ctx, "7", intakeq.FileUpload{
		FileName:    "intake-signature-2025-03-01T15-04-05-123Z.png",
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	}).Return(nil)

	out, err := newSubmitUC(records, nil, nil, testOptions()).Execute(ctx, sub)

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.False(t, out.Outcome.ConsentSigUploaded)
	assert.True(t, out.Outcome.IntakeSigUploaded)
	assert.True(t, out.Saved.Signatures)
	assert.Equal(t, []string{"Consent signature: IntakeQ 413: too large"}, out.Outcome.Errors)
	records.AssertExpectations(t)
}

func TestSubmitIntakeUndecodableSignatureIsRecorded(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordSystem)
	sub := janeDoe()
	sub.SignatureImageData = "data:image/png;base64,"

	records.On("SearchClients", ctx, mock.Anything).Return([]entity.RemoteClient{}, nil)
	records.On("SaveClient", ctx, mock.Anything).Return(&entity.RemoteClient{ID: "7"}, nil)
	records.On("AddTag", ctx, "7", mock.Anything).Return(nil)

	out, err := newSubmitUC(records, nil, nil, testOptions()).Execute(ctx, sub)

	require.NoError(t, err)
	require.Len(t, out.Outcome.Errors, 1)
	assert.Contains(t, out.Outcome.Errors[0], "Consent signature: decode")
	records.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitIntakeTagFailureContinues(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordSystem)
	opts := testOptions()
	opts.QuestionnaireID = "q-1"

	records.On("SearchClients", ctx, mock.Anything).Return([]entity.RemoteClient{}, nil)
	records.On("SaveClient", ctx, mock.Anything).Return(&entity.RemoteClient{ID: "7"}, nil)
	records.On("AddTag", ctx, "7", "Website Booking").Return(errors.New("IntakeQ 400: bad tag"))
	records.On("SendQuestionnaire", ctx, intakeq.SendQuestionnaireInput{
		QuestionnaireID: "q-1",
		ClientID:        "7",
		ClientName:      "Jane Doe",
		ClientEmail:     "jane@example.com",
	}).Return(nil)

	out, err := newSubmitUC(records, nil, nil, opts).Execute(ctx, janeDoe())

	require.NoError(t, err)
	assert.False(t, out.Outcome.Tagged)
	assert.True(t, out.Outcome.QuestionnaireSent)
	assert.Equal(t, []string{"Tags: IntakeQ 400: bad tag"}, out.Outcome.Errors)
	records.AssertNotCalled(t, "AddTag", ctx, "7", "Online Intake")
}

func TestSubmitIntakeSkipsDependentStepsWithoutClientID(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordSystem)
	opts := testOptions()
	opts.QuestionnaireID = "q-1"
	sub := janeDoe()
	sub.SignatureImageData = sigBase64

	records.On("SearchClients", ctx, mock.Anything).Return([]entity.RemoteClient{}, nil)
	records.On("SaveClient", ctx, mock.Anything).Return(&entity.RemoteClient{}, nil)

	out, err := newSubmitUC(records, nil, nil, opts).Execute(ctx, sub)

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Empty(t, out.ClientID)
	records.AssertNotCalled(t, "AddTag", mock.Anything, mock.Anything, mock.Anything)
	records.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
	records.AssertNotCalled(t, "SendQuestionnaire", mock.Anything, mock.Anything)
}

func TestSubmitIntakeSendsBothEmails(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordSystem)
	email := new(MockEmailService)
	sub := janeDoe()
	sub.Signature = "drawn-signature"
	sub.AdditionalPatients = []entity.AdditionalPatient{{FirstName: "John", LastName: "Doe"}}

	records.On("SearchClients", ctx, mock.Anything).Return([]entity.RemoteClient{}, nil)
	records.On("SaveClient", ctx, mock.Anything).Return(&entity.RemoteClient{ID: "101"}, nil)
	records.On("AddTag", ctx, "101", mock.Anything).Return(nil)

	noticeFor := func(n mail.IntakeNotice) bool {
		return n.ClientID == "101" &&
			n.ClientSaved &&
			n.Consents.HIPAA &&
			!n.Consents.Treatment &&
			n.SignatureMethod == "Drawn" &&
			len(n.AdditionalPatients) == 1 && n.AdditionalPatients[0] == "John Doe"
	}
	email.On("SendPracticeNotification", ctx, mock.MatchedBy(noticeFor)).Return(errors.New("resend send: 429"))
	email.On("SendPatientConfirmation", ctx, mock.MatchedBy(noticeFor)).Return(nil)

	out, err := newSubmitUC(records, email, nil, testOptions()).Execute(ctx, sub)

	require.NoError(t, err)
	assert.False(t, out.Outcome.BizEmail)
	assert.True(t, out.Outcome.PatientEmail)
	assert.Equal(t, []string{"Biz email: resend send: 429"}, out.Outcome.Errors)
	email.AssertExpectations(t)
}

func TestSubmitIntakeRecoversFromPanic(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordSystem)
	history := &memoryRecorder{}

	records.On("SearchClients", ctx, mock.Anything).Run(func(mock.Arguments) {
		panic("nil map write in adapter")
	}).Return(nil, nil)

	out, err := newSubmitUC(records, nil, history, testOptions()).Execute(ctx, janeDoe())

	assert.Nil(t, out)
	var te *TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeSubmissionPanic, te.Code)
	assert.Equal(t, "Submission failed. Please call (585) 747-2215.", te.Message)
	assert.NotContains(t, te.Message, "nil map")

	last := history.Last()
	require.NotNil(t, last)
	assert.Equal(t, "nil map write in adapter", last.Error)
}

func TestSubmitIntakeReportsEveryStep(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordSystem)
	records.On("SearchClients", ctx, mock.Anything).Return([]entity.RemoteClient{}, nil)
	records.On("SaveClient", ctx, mock.Anything).Return(&entity.RemoteClient{ID: "1"}, nil)
	records.On("AddTag", ctx, "1", mock.Anything).Return(nil)

	seen := map[string]StepResult{}
	opts := testOptions()
	opts.OnStep = func(step, _ string, r StepResult) { seen[step] = r }

	_, err := newSubmitUC(records, nil, nil, opts).Execute(ctx, janeDoe())

	require.NoError(t, err)
	assert.Equal(t, map[string]StepResult{
		"client_save":   StepOK,
		"tags":          StepOK,
		"questionnaire": StepSkipped,
		"biz_email":     StepSkipped,
		"patient_email": StepSkipped,
	}, seen)
}
