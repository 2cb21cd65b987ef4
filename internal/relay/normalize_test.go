package relay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeParsesDeclaredJSON(t *testing.T) {
	p := Normalize("application/json", []byte(`{"ok":true,"id":"abc"}`))
	require.True(t, p.Structured)
	obj, ok := p.JSON.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "abc", obj["id"])
}

func TestNormalizeHandlesCharsetParameter(t *testing.T) {
	p := Normalize("application/json; charset=utf-8", []byte(`[1,2,3]`))
	require.True(t, p.Structured)
	require.NotNil(t, p.JSON)
}

func TestNormalizeJSONSuffixContentType(t *testing.T) {
	p := Normalize("application/problem+json", []byte(`{"title":"oops"}`))
	require.True(t, p.Structured)
}

func TestNormalizeMalformedJSONNeverFails(t *testing.T) {
	p := Normalize("application/json", []byte(`<html>502 Bad Gateway</html>`))
	require.True(t, p.Structured)
	require.Nil(t, p.JSON)
}

func TestNormalizeOpaqueText(t *testing.T) {
	p := Normalize("text/html", []byte("<h1>Scenario failed</h1>"))
	require.False(t, p.Structured)
	require.Equal(t, "<h1>Scenario failed</h1>", p.Text)
	require.Nil(t, p.JSON)
}

func TestNormalizeMissingContentType(t *testing.T) {
	p := Normalize("", []byte("Accepted"))
	require.False(t, p.Structured)
	require.Equal(t, "Accepted", p.Text)
}

func TestPayloadErrorMessage(t *testing.T) {
	p := Normalize("application/json", []byte(`{"ok":false,"error":"quota exceeded"}`))
	require.Equal(t, "quota exceeded", p.ErrorMessage())

	p = Normalize("application/json", []byte(`{"message":"scenario disabled"}`))
	require.Equal(t, "scenario disabled", p.ErrorMessage())

	p = Normalize("text/plain", []byte("nope"))
	require.Equal(t, "", p.ErrorMessage())
}

func TestPayloadStatesFailure(t *testing.T) {
	require.True(t, Normalize("application/json", []byte(`{"ok":false}`)).StatesFailure())
	require.False(t, Normalize("application/json", []byte(`{"ok":true}`)).StatesFailure())
	require.False(t, Normalize("application/json", []byte(`{"status":"error"}`)).StatesFailure())
	require.False(t, Normalize("text/plain", []byte("ok")).StatesFailure())
}
