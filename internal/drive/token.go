package drive

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frankcoz86/printora-backend/internal/relay"
)

const (
	driveScope       = "https://www.googleapis.com/auth/drive"
	tokenCallTimeout = 10 * time.Second
	tokenSkew        = time.Minute
)

type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// tokenProvider abstracts the access-token exchange so handler tests can
// inject a static token.
type tokenProvider interface {
	accessToken(ctx context.Context) (string, error)
}

// tokenSource exchanges a signed service-account assertion for a bearer
// token and caches it until shortly before expiry.
type tokenSource struct {
	key     serviceAccountKey
	signKey *rsa.PrivateKey
	relay   *relay.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenSource(keyPath string, rc *relay.Client) (*tokenSource, error) {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading service account key: %w", err)
	}
	var key serviceAccountKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("parsing service account key: %w", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("service account key is missing client_email or private_key")
	}
	signKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parsing service account private key: %w", err)
	}
	if key.TokenURI == "" {
		key.TokenURI = "https://oauth2.googleapis.com/token"
	}
	return &tokenSource{key: key, signKey: signKey, relay: rc}, nil
}

func (ts *tokenSource) accessToken(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Before(ts.expiry.Add(-tokenSkew)) {
		return ts.token, nil
	}

	now := time.Now()
	assertion := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   ts.key.ClientEmail,
		"scope": driveScope,
		"aud":   ts.key.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	signed, err := assertion.SignedString(ts.signKey)
	if err != nil {
		return "", fmt.Errorf("signing service account assertion: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", signed)

	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")

	result, err := ts.relay.Do(ctx, relay.Request{
		URL:     ts.key.TokenURI,
		Method:  http.MethodPost,
		Header:  header,
		RawBody: []byte(form.Encode()),
		Timeout: tokenCallTimeout,
	})
	if err != nil {
		return "", err
	}
	if !result.Succeeded {
		msg := result.Payload.ErrorMessage()
		if msg == "" {
			msg = fmt.Sprintf("token endpoint returned status %d", result.StatusCode)
		}
		return "", relay.NewError(relay.KindUpstreamHTTP, "Google token exchange failed: %s", msg)
	}

	obj, ok := result.Payload.JSON.(map[string]any)
	if !ok {
		return "", relay.NewError(relay.KindUpstreamLogical, "token endpoint returned an unreadable response")
	}
	token, _ := obj["access_token"].(string)
	if token == "" {
		return "", relay.NewError(relay.KindUpstreamLogical, "token endpoint returned no access token")
	}
	expiresIn, _ := obj["expires_in"].(float64)
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	ts.token = token
	ts.expiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	return token, nil
}
