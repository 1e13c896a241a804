package encoding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_KnownValues(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "O"},
		{1, "0"},
		{61, "y"},
		{62, "0O"},
		{63, "00"},
		{1_000_000_000, "0Jhkm6"},
		{1_000_000_001, "0Jhkm7"},
		{62*62*62*62*62*62 - 1, "yyyyyy"},
		{62 * 62 * 62 * 62 * 62 * 62, "0OOOOOO"},
	}

	for _, tc := range cases {
		got, err := Encode(tc.n)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "Encode(%d)", tc.n)
	}
}

func TestEncode_ZeroIsFirstAlphabetSymbol(t *testing.T) {
	got, err := Encode(0)
	require.NoError(t, err)
	assert.Equal(t, string(Alphabet[0]), got)
}

func TestEncode_NegativeIsError(t *testing.T) {
	for _, n := range []int64{-1, -62, math.MinInt64} {
		got, err := Encode(n)
		assert.ErrorIs(t, err, ErrNegative, "Encode(%d)", n)
		assert.Empty(t, got)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	values := []int64{
		0, 1, 2, 61, 62, 63, 3843, 3844,
		999_999_999, 1_000_000_000, 1_000_000_001,
		56_800_235_583, 56_800_235_584,
		math.MaxInt64,
	}
	// Dense sweep around the starting counter value.
	for n := int64(1_000_000_000); n < 1_000_000_200; n++ {
		values = append(values, n)
	}

	for _, n := range values {
		code, err := Encode(n)
		require.NoError(t, err)

		back, err := Decode(code)
		require.NoError(t, err)
		assert.Equal(t, n, back, "round trip of %d via %q", n, code)
	}
}

func TestEncode_InjectiveWithinRange(t *testing.T) {
	seen := make(map[string]int64, 5000)
	for n := int64(1_000_000_000); n < 1_000_005_000; n++ {
		code, err := Encode(n)
		require.NoError(t, err)
		if prev, ok := seen[code]; ok {
			t.Fatalf("Encode(%d) and Encode(%d) both produced %q", prev, n, code)
		}
		seen[code] = n
	}
}

func TestEncode_SixCharsInOperatingRange(t *testing.T) {
	boundary := int64(62 * 62 * 62 * 62 * 62 * 62) // first 7-char value

	for _, n := range []int64{1_000_000_000, 1_000_000_001, boundary - 1} {
		code, err := Encode(n)
		require.NoError(t, err)
		assert.Len(t, code, 6, "Encode(%d)", n)
		assert.Equal(t, 6, CodeLen(n))
	}

	code, err := Encode(boundary)
	require.NoError(t, err)
	assert.Len(t, code, 7)
}

func TestDecode_RejectsForeignSymbols(t *testing.T) {
	for _, s := range []string{"", "abc-", "ab cd", "läk", "+Jhkm7"} {
		_, err := Decode(s)
		assert.ErrorIs(t, err, ErrInvalidSymbol, "Decode(%q)", s)
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("0Jhkm7"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("0Jhk_7"))
}
