// Package stripe is a thin client for the two Checkout Session operations
// this service relays, plus webhook signature verification. Calls go through
// the shared relay client so timeout and error classification behave the
// same as every other upstream.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/frankcoz86/printora-backend/internal/relay"
)

const (
	defaultBaseURL = "https://api.stripe.com/v1"
	callTimeout    = 20 * time.Second
)

// Client calls the Stripe REST API with the account's secret key.
type Client struct {
	secretKey string
	baseURL   string
	relay     *relay.Client
	logger    *slog.Logger
}

// NewClient creates a Stripe client. An empty secret key is allowed at
// construction; calls fail with a configuration error instead.
func NewClient(secretKey string, rc *relay.Client, logger *slog.Logger) *Client {
	return &Client{
		secretKey: secretKey,
		baseURL:   defaultBaseURL,
		relay:     rc,
		logger:    logger,
	}
}

// CheckoutParams describes one checkout session. Amount is the caller's
// pre-aggregated order total in currency units; it is not computed here.
type CheckoutParams struct {
	Amount             float64
	Currency           string
	Description        string
	CustomerEmail      string
	Metadata           map[string]string
	PaymentMethodTypes []string
	SuccessURL         string
	CancelURL          string
}

// LineItem is one flattened line of a retrieved session.
type LineItem struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	AmountTotal int64  `json:"amount_total"`
}

// Session is the flat summary a route handler returns to the frontend.
type Session struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	CustomerEmail string
	LineItems     []LineItem
}

// Cents converts a currency-unit amount to integer cents, rounded.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateCheckoutSession builds a single line item for the whole order total
// and returns the session identifier and redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*Session, error) {
	if c.secretKey == "" {
		return nil, relay.NewError(relay.KindConfiguration, "Stripe secret key is not configured")
	}

	currency := p.Currency
	if currency == "" {
		currency = "eur"
	}
	description := p.Description
	if description == "" {
		description = "Order total"
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(Cents(p.Amount), 10))
	form.Set("line_items[0][price_data][product_data][name]", description)
	if p.CustomerEmail != "" {
		form.Set("customer_email", p.CustomerEmail)
	}
	for key, value := range p.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}
	for i, method := range p.PaymentMethodTypes {
		form.Set(fmt.Sprintf("payment_method_types[%d]", i), method)
	}

	var raw sessionResponse
	if err := c.call(ctx, http.MethodPost, "/checkout/sessions", []byte(form.Encode()), &raw); err != nil {
		return nil, err
	}
	return raw.toSession(), nil
}

// GetCheckoutSession fetches a session with its line items expanded and
// flattens the result. Read-only and idempotent.
func (c *Client) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	if c.secretKey == "" {
		return nil, relay.NewError(relay.KindConfiguration, "Stripe secret key is not configured")
	}

	path := "/checkout/sessions/" + url.PathEscape(id) + "?expand[]=line_items"
	var raw sessionResponse
	if err := c.call(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw.toSession(), nil
}

func (c *Client) call(ctx context.Context, method, path string, body []byte, out any) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	result, err := c.relay.Do(ctx, relay.Request{
		URL:     c.baseURL + path,
		Method:  method,
		Header:  header,
		RawBody: body,
		Timeout: callTimeout,
	})
	if err != nil {
		return err
	}
	if !result.Succeeded {
		msg := stripeErrorMessage(result.Payload)
		if msg == "" {
			msg = fmt.Sprintf("Stripe returned status %d", result.StatusCode)
		}
		return relay.NewError(relay.KindUpstreamHTTP, "%s", msg)
	}
	return decodePayload(result.Payload, out)
}

type sessionResponse struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	Status          string `json:"status"`
	PaymentStatus   string `json:"payment_status"`
	AmountTotal     int64  `json:"amount_total"`
	Currency        string `json:"currency"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	LineItems struct {
		Data []LineItem `json:"data"`
	} `json:"line_items"`
}

func (r *sessionResponse) toSession() *Session {
	email := r.CustomerDetails.Email
	if email == "" {
		email = r.CustomerEmail
	}
	return &Session{
		ID:            r.ID,
		URL:           r.URL,
		Status:        r.Status,
		PaymentStatus: r.PaymentStatus,
		AmountTotal:   r.AmountTotal,
		Currency:      r.Currency,
		CustomerEmail: email,
		LineItems:     r.LineItems.Data,
	}
}

func stripeErrorMessage(p relay.Payload) string {
	obj, ok := p.JSON.(map[string]any)
	if !ok {
		return ""
	}
	if errObj, ok := obj["error"].(map[string]any); ok {
		if msg, ok := errObj["message"].(string); ok {
			return msg
		}
	}
	return p.ErrorMessage()
}

func decodePayload(p relay.Payload, out any) error {
	if !p.Structured || p.JSON == nil {
		return relay.NewError(relay.KindUpstreamLogical, "Stripe returned an unreadable response")
	}
	encoded, err := json.Marshal(p.JSON)
	if err != nil {
		return relay.NewError(relay.KindUpstreamLogical, "Stripe returned an unreadable response")
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return relay.NewError(relay.KindUpstreamLogical, "Stripe returned an unexpected response shape")
	}
	return nil
}
