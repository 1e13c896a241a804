package validate

import (
	"errors"

	"github.com/jianyuhu/TinyLink/internal/app/encoding"
)

// Encode of the largest int64 is 11 symbols; anything longer cannot have
// come from the counter.
const maxCodeLength = 11

// ErrMalformedCode is returned for short codes that cannot possibly have
// been issued: wrong length or symbols outside the alphabet.
var ErrMalformedCode = errors.New("validate: malformed short code")

// ShortCode rejects codes that no counter value could have produced.
func ShortCode(code string) error {
	if code == "" || len(code) > maxCodeLength {
		return ErrMalformedCode
	}
	if !encoding.IsValid(code) {
		return ErrMalformedCode
	}
	return nil
}
