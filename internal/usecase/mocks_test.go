package usecase

import (
	"context"
	"sync"

	"github.com/healingsoulutions/intake-api/internal/entity"
	"github.com/healingsoulutions/intake-api/internal/infra/integration/intakeq"
	"github.com/healingsoulutions/intake-api/internal/infra/integration/stripe"
	"github.com/healingsoulutions/intake-api/internal/infra/mail"
	"github.com/stretchr/testify/mock"
)

// MockRecordSystem
type MockRecordSystem struct {
	mock.Mock
}

func (m *MockRecordSystem) SearchClients(ctx context.Context, query string) ([]entity.RemoteClient, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.RemoteClient), args.Error(1)
}

func (m *MockRecordSystem) SaveClient(ctx context.Context, input intakeq.SaveClientInput) (*entity.RemoteClient, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteClient), args.Error(1)
}

func (m *MockRecordSystem) AddTag(ctx context.Context, clientID, tag string) error {
	return m.Called(ctx, clientID, tag).Error(0)
}

func (m *MockRecordSystem) UploadFile(ctx context.Context, clientID string, file intakeq.FileUpload) error {
	return m.Called(ctx, clientID, file).Error(0)
}

func (m *MockRecordSystem) SendQuestionnaire(ctx context.Context, input intakeq.SendQuestionnaireInput) error {
	return m.Called(ctx, input).Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendPracticeNotification(ctx context.Context, notice mail.IntakeNotice) error {
	return m.Called(ctx, notice).Error(0)
}

func (m *MockEmailService) SendPatientConfirmation(ctx context.Context, notice mail.IntakeNotice) error {
	return m.Called(ctx, notice).Error(0)
}

// MockCardVault
type MockCardVault struct {
	mock.Mock
}

func (m *MockCardVault) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockCardVault) CreateCustomer(ctx context.Context, input stripe.CreateCustomerInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockCardVault) CreateSetupIntent(ctx context.Context, input stripe.SetupIntentInput) (*stripe.SetupIntent, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.SetupIntent), args.Error(1)
}

func (m *MockCardVault) GetSetupIntent(ctx context.Context, id string) (*stripe.SetupIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.SetupIntent), args.Error(1)
}

func (m *MockCardVault) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	return m.Called(ctx, customerID, paymentMethodID).Error(0)
}

func (m *MockCardVault) ChargeCard(ctx context.Context, input stripe.ChargeInput) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}

func (m *MockCardVault) Refund(ctx context.Context, paymentIntentID string) error {
	return m.Called(ctx, paymentIntentID).Error(0)
}

func (m *MockCardVault) GetCard(ctx context.Context, paymentMethodID string) (*stripe.Card, error) {
	args := m.Called(ctx, paymentMethodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Card), args.Error(1)
}

// memoryRecorder keeps every record in order.
type memoryRecorder struct {
	mu      sync.Mutex
	records []entity.OutcomeRecord
}

func (r *memoryRecorder) Record(rec entity.OutcomeRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *memoryRecorder) Last() *entity.OutcomeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		return nil
	}
	rec := r.records[len(r.records)-1]
	return &rec
}

func (r *memoryRecorder) Recent(n int) []entity.OutcomeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.OutcomeRecord{}, r.records...)
}
