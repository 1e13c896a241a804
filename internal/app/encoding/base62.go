// Package encoding converts counter values into short codes using a
// positional base-62 representation over a fixed, permuted alphabet.
//
// The alphabet is shuffled once (not the canonical 0-9A-Za-z ordering) so
// that sequential counter values do not produce visually sequential codes.
// It must never change for a running deployment: re-ordering it would make
// every previously issued code decode to a different number.
package encoding

import "errors"

// Alphabet is the permuted 62-symbol set used for all short codes.
const Alphabet = "O0iCbJq5p9eAP4WI67LvfBTRsMntwNSdlXVgUcaQjhmYDo3K12uF8ZGkEzrHxy"

const base = int64(62)

var (
	// ErrNegative is returned when a negative number is encoded.
	ErrNegative = errors.New("encoding: cannot encode negative number")

	// ErrInvalidSymbol is returned when a decoded string contains a
	// character outside the alphabet.
	ErrInvalidSymbol = errors.New("encoding: invalid symbol in code")
)

var symbolValue [256]int8

func init() {
	for i := range symbolValue {
		symbolValue[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		symbolValue[Alphabet[i]] = int8(i)
	}
}

// Encode converts a non-negative integer into its base-62 code.
// There is no zero padding: the code length grows with magnitude,
// and Encode(0) is the single symbol at alphabet index 0.
func Encode(n int64) (string, error) {
	if n < 0 {
		return "", ErrNegative
	}
	if n == 0 {
		return string(Alphabet[0]), nil
	}

	// 11 symbols cover the full int64 range.
	buf := make([]byte, 0, 11)
	for n > 0 {
		buf = append(buf, Alphabet[n%base])
		n /= base
	}

	// Symbols were emitted least-significant first.
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

// Decode is the inverse of Encode. Production code never needs it; it
// exists so the round-trip law Encode/Decode can be verified.
func Decode(code string) (int64, error) {
	if code == "" {
		return 0, ErrInvalidSymbol
	}

	var n int64
	for i := 0; i < len(code); i++ {
		v := symbolValue[code[i]]
		if v < 0 {
			return 0, ErrInvalidSymbol
		}
		n = n*base + int64(v)
	}
	return n, nil
}

// IsValid reports whether every character of s belongs to the alphabet.
func IsValid(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if symbolValue[s[i]] < 0 {
			return false
		}
	}
	return true
}

// CodeLen returns the number of symbols Encode produces for n.
func CodeLen(n int64) int {
	if n <= 0 {
		return 1
	}
	l := 0
	for n > 0 {
		l++
		n /= base
	}
	return l
}
