package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURL_Accepts(t *testing.T) {
	for _, raw := range []string{
		"https://example.com",
		"http://example.com/path?q=1",
		"https://sub.example.com:8443/a/b#frag",
	} {
		assert.NoError(t, URL(raw), raw)
	}
}

func TestURL_RejectsBlank(t *testing.T) {
	assert.ErrorIs(t, URL(""), ErrEmptyURL)
	assert.ErrorIs(t, URL("   "), ErrEmptyURL)
}

func TestURL_RejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"example.com",         // no scheme
		"//example.com",       // scheme-relative
		"ftp://example.com",   // wrong scheme
		"https://",            // no host
		"http:///path",        // no host
		"javascript:alert(1)", // script scheme
		"data:text/html;base64,PGI+",
		"vbscript:msgbox(1)",
		"JAVASCRIPT:alert(1)", // scheme matching is case-insensitive
	} {
		assert.ErrorIs(t, URL(raw), ErrMalformedURL, raw)
	}
}

func TestURL_RejectsOversized(t *testing.T) {
	raw := "https://example.com/" + strings.Repeat("a", maxURLLength)
	assert.ErrorIs(t, URL(raw), ErrURLTooLong)
}
