package marketdata

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatValuePercent(t *testing.T) {
	assert.Equal(t, "12.30%", FormatValue(12.3, FormatPercent))
	assert.Equal(t, "0.49%", FormatValue(0.49, FormatPercent))
	assert.Equal(t, "-1.90%", FormatValue(-1.9, FormatPercent))
	assert.Equal(t, "0.00%", FormatValue(0, FormatPercent))
}

func TestFormatValueCurrency(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatValue(1234.5, FormatCurrencyUSD))
	assert.Equal(t, "-$1,234.50", FormatValue(-1234.5, FormatCurrencyUSD))
	assert.Equal(t, "$0.99", FormatValue(0.99, FormatCurrencyUSD))
	assert.Equal(t, "₹2,850.40", FormatValue(2850.4, FormatCurrencyINR))
}

func TestFormatValueCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{999, "999"},
		{1234, "1.2K"},
		{1500, "1.5K"},
		{999949, "999.9K"},
		{999999, "1M"},
		{1200000, "1.2M"},
		{999999999, "1B"},
		{2500000000, "2.5B"},
		{999999999999, "1T"},
		{3100000000000, "3.1T"},
		{-1234, "-1.2K"},
		{-999999, "-1M"},
		{0, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in, FormatCompact), "input %v", tt.in)
	}
}

func TestFormatValueNumber(t *testing.T) {
	assert.Equal(t, "1,234,567.89", FormatValue(1234567.891, FormatNumber))
	assert.Equal(t, "42", FormatValue(42, FormatNumber))
}

func TestFormatValueDefault(t *testing.T) {
	assert.Equal(t, "42", FormatValue(42, FormatDefault))
	assert.Equal(t, "12.34", FormatValue(12.34, FormatDefault))
	assert.Equal(t, "12,345.68", FormatValue(12345.678, FormatDefault))
	// tiny magnitudes use scientific notation instead of rounding to zero
	assert.Equal(t, "5.00e-03", FormatValue(0.005, FormatDefault))
}

// FormatValue is total: any input under any specifier yields a string.
func TestFormatValueNonNumericPassthrough(t *testing.T) {
	formats := []string{
		FormatDefault, FormatCurrencyUSD, FormatCurrencyINR,
		FormatPercent, FormatCompact, FormatNumber, "unrecognized",
	}
	for _, f := range formats {
		assert.Equal(t, "—", FormatValue(nil, f), "format %q", f)
		assert.Equal(t, "hello", FormatValue("hello", f), "format %q", f)
		assert.Equal(t, "true", FormatValue(true, f), "format %q", f)
		assert.Equal(t, "NaN", FormatValue(math.NaN(), f), "format %q", f)
		assert.Equal(t, "+Inf", FormatValue(math.Inf(1), f), "format %q", f)
	}
}

func TestFormatValueNumericStrings(t *testing.T) {
	// Provider payloads often carry numbers as strings.
	assert.Equal(t, "12.30%", FormatValue("12.3", FormatPercent))
	assert.Equal(t, "$5.00", FormatValue(" 5 ", FormatCurrencyUSD))
	assert.Equal(t, "1.2K", FormatValue(json.Number("1234"), FormatCompact))
}

func TestFormatValueUnknownSpecifierFallsBack(t *testing.T) {
	assert.Equal(t, "12,345.68", FormatValue(12345.678, "no-such-format"))
}
