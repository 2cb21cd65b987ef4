package relay

import (
	"encoding/json"
	"mime"
	"strings"
)

// Payload is the normalized shape of an upstream response body: either
// structured (parsed JSON) or opaque text.
type Payload struct {
	Structured bool
	JSON       any
	Text       string
}

// Normalize reduces a raw response body to a Payload based on the declared
// content type. A declared-JSON body that fails to parse yields a structured
// payload with a nil JSON value; normalization never returns an error.
func Normalize(contentType string, body []byte) Payload {
	if isJSONContentType(contentType) {
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return Payload{Structured: true}
		}
		return Payload{Structured: true, JSON: v}
	}
	return Payload{Text: string(body)}
}

func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// ErrorMessage pulls an upstream-stated error message out of a structured
// payload, trying the common "error" and "message" keys. Returns "" when the
// payload is opaque or carries no message.
func (p Payload) ErrorMessage() string {
	obj, ok := p.JSON.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"error", "message"} {
		if msg, ok := obj[key].(string); ok && msg != "" {
			return msg
		}
	}
	return ""
}

// StatesFailure reports whether a structured payload explicitly declares
// failure via an "ok": false field, the convention used by the automation
// endpoints this service relays to.
func (p Payload) StatesFailure() bool {
	obj, ok := p.JSON.(map[string]any)
	if !ok {
		return false
	}
	okField, present := obj["ok"]
	if !present {
		return false
	}
	b, isBool := okField.(bool)
	return isBool && !b
}
