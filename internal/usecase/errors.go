package usecase

import "errors"

type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is a collaborator failure the caller cannot fix. Detail is
// kept for operators and never rendered to the patient.
type TechnicalError struct {
	Code    string
	Message string
	Detail  any
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotConfigured    = "NOT_CONFIGURED"
	CodeClientSaveFailed = "CLIENT_SAVE_FAILED"
	CodeSubmissionPanic  = "SUBMISSION_FAILED"
	CodeSetupFailed      = "SETUP_INIT_FAILED"
	CodeSetupIncomplete  = "SETUP_INCOMPLETE"
	CodeCardVerification = "CARD_VERIFICATION_FAILED"
)
