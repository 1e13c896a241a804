// Package validate checks user-supplied input before any resource is
// consumed on its behalf.
package validate

import (
	"errors"
	"net/url"
	"strings"
)

const maxURLLength = 2048

var (
	// ErrEmptyURL is returned for blank input.
	ErrEmptyURL = errors.New("validate: url is empty")

	// ErrMalformedURL is returned when the input is not an absolute
	// http/https URL.
	ErrMalformedURL = errors.New("validate: url is not an absolute http(s) url")

	// ErrURLTooLong bounds stored URLs to a sane size.
	ErrURLTooLong = errors.New("validate: url exceeds maximum length")
)

// Schemes like javascript: or data: must never be stored, or the redirect
// endpoint becomes an XSS vector.
var blockedSchemes = map[string]bool{
	"javascript": true,
	"data":       true,
	"file":       true,
	"vbscript":   true,
	"about":      true,
	"blob":       true,
}

// URL rejects anything that is not a well-formed absolute http or https URL.
func URL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyURL
	}
	if len(raw) > maxURLLength {
		return ErrURLTooLong
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ErrMalformedURL
	}

	scheme := strings.ToLower(parsed.Scheme)
	if blockedSchemes[scheme] {
		return ErrMalformedURL
	}
	if scheme != "http" && scheme != "https" {
		return ErrMalformedURL
	}
	if parsed.Host == "" {
		return ErrMalformedURL
	}

	return nil
}
