package stripe

// Status values the card flow cares about.
const (
	StatusSucceeded = "succeeded"
)

type CreateCustomerInput struct {
	Email string
	Name  string
}

type SetupIntentInput struct {
	CustomerID string
	Metadata   map[string]string
}

type SetupIntent struct {
	ID              string
	ClientSecret    string
	Status          string
	CustomerID      string
	PaymentMethodID string
}

// ChargeInput is an immediate off-session charge against a saved card.
type ChargeInput struct {
	CustomerID      string
	PaymentMethodID string
	AmountCents     int64
	Currency        string
	Description     string
}

type PaymentIntent struct {
	ID     string
	Status string
}

type Card struct {
	Brand string
	Last4 string
}
