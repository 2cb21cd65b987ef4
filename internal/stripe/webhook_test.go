package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/frankcoz86/printora-backend/internal/relay"
)

func signPayload(t *testing.T, payload []byte, secret string, at time.Time) string {
	t.Helper()
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignatureAcceptsValid(t *testing.T) {
	payload := []byte(`{"type":"checkout.session.completed"}`)
	now := time.Now()
	header := signPayload(t, payload, "whsec_test", now)
	require.NoError(t, VerifySignature(payload, header, "whsec_test", DefaultTolerance, now))
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	payload := []byte(`{"type":"checkout.session.completed","amount":100}`)
	now := time.Now()
	header := signPayload(t, payload, "whsec_test", now)

	tampered := []byte(`{"type":"checkout.session.completed","amount":999}`)
	err := VerifySignature(tampered, header, "whsec_test", DefaultTolerance, now)
	require.Error(t, err)
	require.Equal(t, relay.KindSignature, relay.KindOf(err))
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	header := signPayload(t, payload, "whsec_other", now)
	require.Error(t, VerifySignature(payload, header, "whsec_test", DefaultTolerance, now))
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	signedAt := time.Now().Add(-10 * time.Minute)
	header := signPayload(t, payload, "whsec_test", signedAt)
	err := VerifySignature(payload, header, "whsec_test", DefaultTolerance, time.Now())
	require.Error(t, err)
	require.Equal(t, relay.KindSignature, relay.KindOf(err))
}

func TestVerifySignatureAcceptsSecondV1Entry(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	valid := signPayload(t, payload, "whsec_test", now)
	// Rotated-secret case: one stale v1 entry plus a valid one.
	header := fmt.Sprintf("%s,v1=%s", valid, hex.EncodeToString(make([]byte, 32)))
	require.NoError(t, VerifySignature(payload, header, "whsec_test", DefaultTolerance, now))
}

func TestVerifySignatureRejectsMissingHeader(t *testing.T) {
	err := VerifySignature([]byte(`{}`), "", "whsec_test", DefaultTolerance, time.Now())
	require.Error(t, err)
	require.Equal(t, relay.KindSignature, relay.KindOf(err))
}

func TestVerifySignatureRejectsGarbageHeader(t *testing.T) {
	err := VerifySignature([]byte(`{}`), "not-a-signature", "whsec_test", DefaultTolerance, time.Now())
	require.Error(t, err)
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"id":"evt_1","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_1"}}}`))
	require.NoError(t, err)
	require.Equal(t, "payment_intent.payment_failed", ev.Type)
	require.NotEmpty(t, ev.Data.Object)

	_, err = ParseEvent([]byte(`not json`))
	require.Error(t, err)

	_, err = ParseEvent([]byte(`{"id":"evt_2"}`))
	require.Error(t, err)
}

func TestIsPaymentFailure(t *testing.T) {
	require.True(t, IsPaymentFailure("checkout.session.async_payment_failed"))
	require.True(t, IsPaymentFailure("checkout.session.expired"))
	require.True(t, IsPaymentFailure("payment_intent.payment_failed"))
	require.False(t, IsPaymentFailure("checkout.session.completed"))
	require.False(t, IsPaymentFailure("invoice.paid"))
}
