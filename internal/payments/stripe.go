package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
)

// StripeProvider implements Provider against Stripe's hosted checkout.
type StripeProvider struct{}

func NewStripeProvider(secretKey string) (*StripeProvider, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("missing Stripe secret key")
	}
	stripe.Key = secretKey
	return &StripeProvider{}, nil
}

func (p *StripeProvider) CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.Items))
	for _, item := range params.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.Price),
			},
			Quantity: stripe.Int64(item.Quantity),
			AdjustableQuantity: &stripe.CheckoutSessionLineItemAdjustableQuantityParams{
				Enabled: stripe.Bool(true),
				Minimum: stripe.Int64(1),
				Maximum: stripe.Int64(10),
			},
		})
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:      stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: lineItems,
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(params.AllowedCountries),
		},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	sessionParams.Context = ctx
	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}

	s, err := session.New(sessionParams)
	if err != nil {
		return nil, providerError(err)
	}

	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProvider) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx
	getParams.AddExpand("line_items")
	getParams.AddExpand("customer_details")

	s, err := session.Get(sessionID, getParams)
	if err != nil {
		return nil, providerError(err)
	}

	result := &Session{
		ID:               s.ID,
		URL:              s.URL,
		Paid:             s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		PaymentStatus:    string(s.PaymentStatus),
		AmountTotalCents: s.AmountTotal,
		Currency:         string(s.Currency),
		CustomerEmail:    s.CustomerEmail,
	}
	if s.CustomerDetails != nil {
		result.CustomerName = s.CustomerDetails.Name
		if s.CustomerDetails.Email != "" {
			result.CustomerEmail = s.CustomerDetails.Email
		}
	}
	if s.LineItems != nil {
		for _, li := range s.LineItems.Data {
			line := SessionLine{
				Description: li.Description,
				Quantity:    li.Quantity,
			}
			if li.Price != nil {
				line.UnitAmountCents = li.Price.UnitAmount
			}
			result.Lines = append(result.Lines, line)
		}
	}

	return result, nil
}

// providerError unwraps Stripe's error envelope so the caller sees the
// human-readable message, not the whole API error dump.
func providerError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return errors.New(stripeErr.Msg)
	}
	return err
}
