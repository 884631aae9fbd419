package entity

// CardOnFile is the proof returned after a card has been verified and saved
// as the customer's default payment method.
type CardOnFile struct {
	CustomerID      string `json:"customerId"`
	PaymentMethodID string `json:"paymentMethodId"`
	Brand           string `json:"brand"`
	Last4           string `json:"last4"`
}
