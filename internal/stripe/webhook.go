package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/frankcoz86/printora-backend/internal/relay"
)

// DefaultTolerance bounds how old a signed webhook timestamp may be.
const DefaultTolerance = 5 * time.Minute

// Event is the decoded envelope of a webhook payload. Data.Object is left
// raw; handlers only pick the fields they forward.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a verified webhook body. Must only be called after
// VerifySignature has accepted the raw bytes.
func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, relay.NewError(relay.KindValidation, "webhook payload is not valid JSON")
	}
	if ev.Type == "" {
		return nil, relay.NewError(relay.KindValidation, "webhook payload has no event type")
	}
	return &ev, nil
}

// IsPaymentFailure reports whether an event type should trigger the
// best-effort failure notice to the automation endpoint.
func IsPaymentFailure(eventType string) bool {
	switch eventType {
	case "checkout.session.async_payment_failed",
		"checkout.session.expired",
		"payment_intent.payment_failed":
		return true
	}
	return false
}

// VerifySignature checks a Stripe-Signature header against the raw request
// body: HMAC-SHA256 over "<timestamp>.<body>" with the signing secret, any
// v1 entry may match, and the timestamp must be within tolerance of now.
// The body must be the exact bytes received, unparsed.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if header == "" {
		return relay.NewError(relay.KindSignature, "missing Stripe-Signature header")
	}

	var timestamp int64
	var signatures [][]byte
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return relay.NewError(relay.KindSignature, "malformed signature timestamp")
			}
			timestamp = parsed
		case "v1":
			decoded, err := hex.DecodeString(value)
			if err != nil {
				continue
			}
			signatures = append(signatures, decoded)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return relay.NewError(relay.KindSignature, "signature header has no usable entries")
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return relay.NewError(relay.KindSignature, "signature timestamp outside tolerance")
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return relay.NewError(relay.KindSignature, "signature does not match payload")
}
