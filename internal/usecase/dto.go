package usecase

import "github.com/healingsoulutions/intake-api/internal/entity"

type SavedSummary struct {
	Client     bool `json:"client"`
	Signatures bool `json:"signatures"`
	Tags       bool `json:"tags"`
}

type SubmitIntakeOutput struct {
	Success  bool                     `json:"success"`
	ClientID string                   `json:"clientId"`
	Message  string                   `json:"message"`
	Saved    SavedSummary             `json:"saved"`
	Outcome  entity.SubmissionOutcome `json:"-"`
}

type SetupCardInput struct {
	Email string
	Name  string
}

type SetupCardOutput struct {
	ClientSecret string `json:"clientSecret"`
	CustomerID   string `json:"customerId"`
}

type ConfirmCardInput struct {
	SetupIntentID string `json:"setupIntentId" validate:"notblank"`
	CustomerID    string `json:"customerId" validate:"notblank"`
}

type ConfirmCardOutput struct {
	Success bool `json:"success"`
	entity.CardOnFile
}
