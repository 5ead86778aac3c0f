package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/nuthu-archive/storefront-api/models"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
)

// allCountries are the ISO 3166-1 alpha-2 codes offered for shipping when no restriction is configured
var allCountries = strings.Fields(`
AD AE AF AG AI AL AM AO AQ AR AS AT AU AW AX AZ
BA BB BD BE BF BG BH BI BJ BL BM BN BO BQ BR BS BT BV BW BY BZ
CA CC CD CF CG CH CI CK CL CM CN CO CR CU CV CW CX CY CZ
DE DJ DK DM DO DZ
EC EE EG EH ER ES ET
FI FJ FK FM FO FR
GA GB GD GE GF GG GH GI GL GM GN GP GQ GR GS GT GU GW GY
HK HM HN HR HT HU
ID IE IL IM IN IO IQ IR IS IT
JE JM JO JP
KE KG KH KI KM KN KP KR KW KY KZ
LA LB LC LI LK LR LS LT LU LV LY
MA MC MD ME MF MG MH MK ML MM MN MO MP MQ MR MS MT MU MV MW MX MY MZ
NA NC NE NF NG NI NL NO NP NR NU NZ
OM
PA PE PF PG PH PK PL PM PN PR PS PT PW PY
QA
RE RO RS RU RW
SA SB SC SD SE SG SH SI SJ SK SL SM SN SO SR SS ST SV SX SY SZ
TC TD TF TG TH TJ TK TL TM TN TO TR TT TV TW TZ
UA UG UM US UY UZ
VA VC VE VG VI VN VU
WF WS
YE YT
ZA ZM ZW
`)

// AllowedShippingCountries parses STRIPE_ALLOWED_COUNTRIES. Empty, ALL and * mean every country.
func AllowedShippingCountries(raw string) []string {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" || value == "ALL" || value == "*" {
		return append([]string(nil), allCountries...)
	}

	var out []string
	for _, c := range strings.Split(value, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

type CheckoutLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type CheckoutRequest struct {
	OrderID          uint
	Currency         string
	Lines            []CheckoutLine
	CustomerEmail    string
	SuccessURL       string
	CancelURL        string
	AllowedCountries []string
}

type CheckoutSession struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
	Shipping      models.ShippingDetails
}

// StripeGateway is the subset of the Stripe API used by checkout
type StripeGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error)
}

type StripeService struct {
	sc *client.API
}

func NewStripeService(secretKey string) *StripeService {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeService{sc: sc}
}

func (s *StripeService) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Lines))
	for _, line := range req.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(req.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
				UnitAmount: stripe.Int64(line.UnitAmount),
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:                lineItems,
		SuccessURL:               stripe.String(req.SuccessURL),
		CancelURL:                stripe.String(req.CancelURL),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(req.AllowedCountries),
		},
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata("order_id", strconv.FormatUint(uint64(req.OrderID), 10))

	sess, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return FromStripeSession(sess), nil
}

func (s *StripeService) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := s.sc.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, err
	}
	return FromStripeSession(sess), nil
}

func (s *StripeService) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	pi, err := s.sc.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}

// FromStripeSession flattens a Stripe checkout session, preferring the
// buyer details Stripe collected over the email passed at creation. The
// collected shipping address wins over the billing address.
func FromStripeSession(sess *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            sess.ID,
		URL:           sess.URL,
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		AmountTotal:   sess.AmountTotal,
		Currency:      string(sess.Currency),
		CustomerEmail: sess.CustomerEmail,
		Metadata:      sess.Metadata,
	}

	var address *stripe.Address
	if d := sess.CustomerDetails; d != nil {
		if d.Email != "" {
			out.CustomerEmail = d.Email
		}
		out.Shipping.Phone = d.Phone
		address = d.Address
	}
	if s := sess.ShippingDetails; s != nil {
		if s.Address != nil {
			address = s.Address
		}
		if s.Phone != "" {
			out.Shipping.Phone = s.Phone
		}
	}
	if address != nil {
		out.Shipping.Address = strings.TrimSpace(strings.Join([]string{address.Line1, address.Line2}, " "))
		out.Shipping.City = address.City
		out.Shipping.State = address.State
		out.Shipping.Zip = address.PostalCode
		out.Shipping.Country = address.Country
	}
	out.Shipping.Email = out.CustomerEmail
	return out
}

// ParseStripeEvent verifies the Stripe-Signature header against the endpoint secret
func ParseStripeEvent(payload []byte, signature, secret string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
