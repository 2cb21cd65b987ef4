// Package validate holds the stateless per-field checks run at the boundary
// of every route, before any outbound call is attempted. The first violated
// rule is reported; violations are never aggregated.
package validate

import (
	"path/filepath"
	"strings"

	"github.com/frankcoz86/printora-backend/internal/relay"
)

// NonEmpty rejects a missing or blank required field.
func NonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return relay.NewError(relay.KindValidation, "%s is required", field)
	}
	return nil
}

// MaxLen rejects a field longer than max characters.
func MaxLen(field, value string, max int) error {
	if len(value) > max {
		return relay.NewError(relay.KindValidation, "%s must be at most %d characters", field, max)
	}
	return nil
}

// Email checks the intentionally permissive address shape: exactly one "@"
// with non-whitespace on both sides and a "." somewhere in the domain
// segment. Not an RFC validator.
func Email(value string) error {
	at := strings.Count(value, "@")
	if at != 1 {
		return relay.NewError(relay.KindValidation, "email address is invalid")
	}
	local, domain, _ := strings.Cut(value, "@")
	if local == "" || domain == "" ||
		strings.ContainsAny(local, " \t") || strings.ContainsAny(domain, " \t") {
		return relay.NewError(relay.KindValidation, "email address is invalid")
	}
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") || strings.HasPrefix(domain, ".") {
		return relay.NewError(relay.KindValidation, "email address is invalid")
	}
	return nil
}

// Amount checks that a decoded JSON value is a positive number and returns
// it. String-typed amounts are rejected: the caller must send a JSON number.
func Amount(value any) (float64, error) {
	amount, ok := value.(float64)
	if !ok {
		return 0, relay.NewError(relay.KindValidation, "amount must be a number")
	}
	if amount <= 0 {
		return 0, relay.NewError(relay.KindValidation, "amount must be greater than zero")
	}
	return amount, nil
}

// Extension rejects filenames whose extension is not on the allow-list.
// Matching is case-insensitive and the list entries carry no leading dot.
func Extension(filename string, allowed []string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return relay.NewError(relay.KindValidation, "file has no extension")
	}
	for _, a := range allowed {
		if ext == strings.ToLower(strings.TrimSpace(a)) {
			return nil
		}
	}
	return relay.NewError(relay.KindValidation, "file type .%s is not allowed", ext)
}

// FileSize rejects files above the configured ceiling in megabytes.
func FileSize(sizeBytes int64, maxMB int) error {
	limit := int64(maxMB) << 20
	if sizeBytes > limit {
		return relay.NewError(relay.KindValidation, "file exceeds the %d MB limit", maxMB)
	}
	return nil
}

// FirstError runs checks in order and returns the first failure, matching
// the short-circuit policy of every route.
func FirstError(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}
