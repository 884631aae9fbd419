package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// Client wraps the Stripe SDK with just the calls the card-on-file flow needs.
type Client struct {
	api *client.API
	log *zap.Logger
}

type Options struct {
	// URL overrides the API host. Empty means api.stripe.com.
	URL        string
	HTTPClient *http.Client
}

func NewClient(secretKey string, opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	cfg := &stripeapi.BackendConfig{
		HTTPClient:        opts.HTTPClient,
		MaxNetworkRetries: stripeapi.Int64(0),
		LeveledLogger:     log.Named("stripe-sdk").Sugar(),
	}
	if opts.URL != "" {
		cfg.URL = stripeapi.String(opts.URL)
	}
	backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, cfg)

	api := &client.API{}
	api.Init(secretKey, &stripeapi.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &Client{api: api, log: log.Named("stripe")}
}

// FindCustomerByEmail returns the id of the first customer with exactly this
// email, or "" when there is none.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	params := &stripeapi.CustomerListParams{Email: stripeapi.String(email)}
	params.Context = ctx
	params.Limit = stripeapi.Int64(1)
	params.Single = true

	iter := c.api.Customers.List(params)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("list customers: %w", err)
	}
	return "", nil
}

func (c *Client) CreateCustomer(ctx context.Context, input CreateCustomerInput) (string, error) {
	params := &stripeapi.CustomerParams{}
	params.Context = ctx
	if input.Email != "" {
		params.Email = stripeapi.String(input.Email)
	}
	if input.Name != "" {
		params.Name = stripeapi.String(input.Name)
	}

	cus, err := c.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return cus.ID, nil
}

func (c *Client) CreateSetupIntent(ctx context.Context, input SetupIntentInput) (*SetupIntent, error) {
	params := &stripeapi.SetupIntentParams{
		Customer:           stripeapi.String(input.CustomerID),
		PaymentMethodTypes: stripeapi.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range input.Metadata {
		params.AddMetadata(k, v)
	}

	si, err := c.api.SetupIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create setup intent: %w", err)
	}
	return toSetupIntent(si), nil
}

func (c *Client) GetSetupIntent(ctx context.Context, id string) (*SetupIntent, error) {
	params := &stripeapi.SetupIntentParams{}
	params.Context = ctx

	si, err := c.api.SetupIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve setup intent: %w", err)
	}
	return toSetupIntent(si), nil
}

func (c *Client) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripeapi.CustomerParams{
		InvoiceSettings: &stripeapi.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripeapi.String(paymentMethodID),
		},
	}
	params.Context = ctx

	if _, err := c.api.Customers.Update(customerID, params); err != nil {
		return fmt.Errorf("set default payment method: %w", err)
	}
	return nil
}

// ChargeCard confirms an off-session payment immediately.
func (c *Client) ChargeCard(ctx context.Context, input ChargeInput) (*PaymentIntent, error) {
	params := &stripeapi.PaymentIntentParams{
		Amount:             stripeapi.Int64(input.AmountCents),
		Currency:           stripeapi.String(input.Currency),
		Customer:           stripeapi.String(input.CustomerID),
		PaymentMethod:      stripeapi.String(input.PaymentMethodID),
		PaymentMethodTypes: stripeapi.StringSlice([]string{"card"}),
		Confirm:            stripeapi.Bool(true),
		OffSession:         stripeapi.Bool(true),
		Description:        stripeapi.String(input.Description),
	}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &PaymentIntent{ID: pi.ID, Status: string(pi.Status)}, nil
}

func (c *Client) Refund(ctx context.Context, paymentIntentID string) error {
	params := &stripeapi.RefundParams{
		PaymentIntent: stripeapi.String(paymentIntentID),
		Reason:        stripeapi.String(string(stripeapi.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx

	if _, err := c.api.Refunds.New(params); err != nil {
		return fmt.Errorf("refund %s: %w", paymentIntentID, err)
	}
	return nil
}

func (c *Client) GetCard(ctx context.Context, paymentMethodID string) (*Card, error) {
	params := &stripeapi.PaymentMethodParams{}
	params.Context = ctx

	pm, err := c.api.PaymentMethods.Get(paymentMethodID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment method: %w", err)
	}
	if pm.Card == nil {
		return &Card{}, nil
	}
	return &Card{Brand: string(pm.Card.Brand), Last4: pm.Card.Last4}, nil
}

// Message returns the human text Stripe attached to an API error, falling
// back to the full error text for anything else.
func Message(err error) string {
	var se *stripeapi.Error
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	return err.Error()
}

func toSetupIntent(si *stripeapi.SetupIntent) *SetupIntent {
	out := &SetupIntent{
		ID:           si.ID,
		ClientSecret: si.ClientSecret,
		Status:       string(si.Status),
	}
	if si.Customer != nil {
		out.CustomerID = si.Customer.ID
	}
	if si.PaymentMethod != nil {
		out.PaymentMethodID = si.PaymentMethod.ID
	}
	return out
}
