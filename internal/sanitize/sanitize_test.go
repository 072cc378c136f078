package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	s := New()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain text", input: "Ana Pérez", expected: "Ana Pérez"},
		{name: "empty", input: "", expected: ""},
		{name: "bold tags stripped", input: "<b>Ana</b> Pérez", expected: "Ana Pérez"},
		{name: "script dropped with body", input: "<script>alert(1)</script>Hola", expected: "Hola"},
		{name: "ampersand kept as text", input: "Tom & Jerry", expected: "Tom & Jerry"},
		{name: "quotes kept as text", input: `dijo "bien" y 'ok'`, expected: `dijo "bien" y 'ok'`},
		{name: "newlines kept", input: "línea 1\nlínea 2", expected: "línea 1\nlínea 2"},
		{name: "surrounding whitespace trimmed", input: "  Luis  ", expected: "Luis"},
		{name: "event handler attribute", input: `<img src=x onerror="alert(1)">foto`, expected: "foto"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, s.Clean(tc.input))
		})
	}
}

func TestCleanNeverYieldsScriptMarkup(t *testing.T) {
	s := New()

	inputs := []string{
		"<script>alert(1)</script>",
		"<SCRIPT SRC=//evil.example/x.js></SCRIPT>",
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;",
		"<scr<script>ipt>alert(1)</script>",
		"<<script>script>alert(1)<</script>/script>",
	}

	for _, input := range inputs {
		out := strings.ToLower(s.Clean(input))
		assert.NotContains(t, out, "<script", "input %q", input)
	}
}

func TestCleanDropsInvalidUTF8(t *testing.T) {
	s := New()

	out := s.Clean("\xff\xfe<script>x</script>Ana\xc3")
	assert.True(t, utf8.ValidString(out))
	assert.NotContains(t, out, "<script")
	assert.Equal(t, "Ana", out)

	assert.Equal(t, "Pérez", s.Clean("P\xffé\xfer\x80ez"))
}

func TestCleanPtr(t *testing.T) {
	s := New()
	assert.Equal(t, "", s.CleanPtr(nil))

	v := "<i>nota</i>"
	assert.Equal(t, "nota", s.CleanPtr(&v))
}
