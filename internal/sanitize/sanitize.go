package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxPasses bounds the sanitize/unescape loop; entity-encoded markup needs
// at most a couple of rounds to settle.
const maxPasses = 4

// Sanitizer reduces free text to plain text with no markup. The result is
// unescaped so templates can escape it exactly once on output.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean drops invalid UTF-8 before sanitizing so stored text is always valid.
func (s *Sanitizer) Clean(text string) string {
	out := strings.ToValidUTF8(text, "")
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	// did not settle: keep the escaped form, never raw markup
	return strings.TrimSpace(s.policy.Sanitize(out))
}

// CleanPtr treats a nil pointer as empty input.
func (s *Sanitizer) CleanPtr(text *string) string {
	if text == nil {
		return ""
	}
	return s.Clean(*text)
}
