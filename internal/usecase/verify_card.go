package usecase

import (
	"context"
	"strings"

	"github.com/healingsoulutions/intake-api/internal/entity"
	"github.com/healingsoulutions/intake-api/internal/infra/integration/stripe"
	"go.uber.org/zap"
)

const (
	verificationAmountCents = 1
	verificationCurrency    = "usd"
)

// Verification results reported to OnResult.
const (
	CardVerified         = "verified"
	CardVerifiedNoCharge = "verified_without_charge"
	CardIncomplete       = "incomplete"
	CardFailed           = "failed"
)

type VerifyCardOptions struct {
	PracticeName        string
	DefaultCustomerName string
	OnResult            func(result string)
}

// VerifyCardUseCase saves a card on file in two calls: Setup hands the browser
// a SetupIntent secret, Confirm checks the card with a refunded one-cent
// charge.
type VerifyCardUseCase struct {
	Vault CardVault
	opts  VerifyCardOptions
	log   *zap.Logger
}

func NewVerifyCardUseCase(vault CardVault, opts VerifyCardOptions, log *zap.Logger) *VerifyCardUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DefaultCustomerName == "" {
		opts.DefaultCustomerName = opts.PracticeName + " Patient"
	}
	return &VerifyCardUseCase{Vault: vault, opts: opts, log: log.Named("verify_card")}
}

func (uc *VerifyCardUseCase) Setup(ctx context.Context, input SetupCardInput) (*SetupCardOutput, error) {
	if uc.Vault == nil {
		return nil, errPaymentsNotConfigured()
	}

	customerID, err := uc.resolveCustomer(ctx, input)
	if err != nil {
		uc.log.Error("customer lookup failed", zap.Error(err))
		return nil, &TechnicalError{Code: CodeSetupFailed, Message: "Could not initialize payment form."}
	}

	si, err := uc.Vault.CreateSetupIntent(ctx, stripe.SetupIntentInput{
		CustomerID: customerID,
		Metadata: map[string]string{
			"type":          "card_on_file",
			"patient_name":  input.Name,
			"patient_email": input.Email,
		},
	})
	if err != nil {
		uc.log.Error("setup intent creation failed", zap.String("customer_id", customerID), zap.Error(err))
		return nil, &TechnicalError{Code: CodeSetupFailed, Message: "Could not initialize payment form."}
	}

	return &SetupCardOutput{ClientSecret: si.ClientSecret, CustomerID: customerID}, nil
}

func (uc *VerifyCardUseCase) resolveCustomer(ctx context.Context, input SetupCardInput) (string, error) {
	if input.Email == "" {
		name := input.Name
		if name == "" {
			name = uc.opts.DefaultCustomerName
		}
		return uc.Vault.CreateCustomer(ctx, stripe.CreateCustomerInput{Name: name})
	}

	id, err := uc.Vault.FindCustomerByEmail(ctx, input.Email)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	return uc.Vault.CreateCustomer(ctx, stripe.CreateCustomerInput{Email: input.Email, Name: input.Name})
}

func (uc *VerifyCardUseCase) Confirm(ctx context.Context, input ConfirmCardInput) (*ConfirmCardOutput, error) {
	if uc.Vault == nil {
		return nil, errPaymentsNotConfigured()
	}

	if fields := ValidateStruct(input); len(fields) > 0 {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: "setupIntentId and customerId are required.",
			Fields:  fields,
		}
	}

	si, err := uc.Vault.GetSetupIntent(ctx, input.SetupIntentID)
	if err != nil {
		return nil, uc.verificationFailed(err)
	}
	if si.Status != stripe.StatusSucceeded {
		uc.report(CardIncomplete)
		return nil, &DomainError{Code: CodeSetupIncomplete, Message: "Card setup did not complete."}
	}

	pmID := si.PaymentMethodID
	if err := uc.Vault.SetDefaultPaymentMethod(ctx, input.CustomerID, pmID); err != nil {
		return nil, uc.verificationFailed(err)
	}

	charged := uc.microCharge(ctx, input.CustomerID, pmID)

	card, err := uc.Vault.GetCard(ctx, pmID)
	if err != nil {
		return nil, uc.verificationFailed(err)
	}

	if charged {
		uc.report(CardVerified)
	} else {
		uc.report(CardVerifiedNoCharge)
	}

	return &ConfirmCardOutput{
		Success: true,
		CardOnFile: entity.CardOnFile{
			CustomerID:      input.CustomerID,
			PaymentMethodID: pmID,
			Brand:           card.Brand,
			Last4:           card.Last4,
		},
	}, nil
}

// microCharge charges one cent and refunds it when the charge succeeded.
// Every failure here is logged and swallowed: the card is already saved.
func (uc *VerifyCardUseCase) microCharge(ctx context.Context, customerID, paymentMethodID string) bool {
	pi, err := uc.Vault.ChargeCard(ctx, stripe.ChargeInput{
		CustomerID:      customerID,
		PaymentMethodID: paymentMethodID,
		AmountCents:     verificationAmountCents,
		Currency:        verificationCurrency,
		Description:     strings.TrimSpace(uc.opts.PracticeName + " - Card verification (refundable)"),
	})
	if err != nil {
		uc.log.Info("verification charge skipped", zap.String("customer_id", customerID), zap.Error(err))
		return false
	}
	if pi.Status != stripe.StatusSucceeded {
		return false
	}

	if err := uc.Vault.Refund(ctx, pi.ID); err != nil {
		uc.log.Error("verification refund failed",
			zap.String("customer_id", customerID),
			zap.String("payment_intent_id", pi.ID),
			zap.Error(err),
		)
	}
	return true
}

func (uc *VerifyCardUseCase) verificationFailed(err error) error {
	uc.log.Error("card verification failed", zap.Error(err))
	uc.report(CardFailed)
	return &DomainError{Code: CodeCardVerification, Message: "Card verification failed: " + stripe.Message(err)}
}

func (uc *VerifyCardUseCase) report(result string) {
	if uc.opts.OnResult != nil {
		uc.opts.OnResult(result)
	}
}

func errPaymentsNotConfigured() error {
	return &TechnicalError{Code: CodeNotConfigured, Message: "Payment system not configured."}
}
