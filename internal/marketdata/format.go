package marketdata

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Recognized format specifiers.
const (
	FormatDefault     = ""
	FormatCurrencyUSD = "currency-usd"
	FormatCurrencyINR = "currency-inr"
	FormatPercent     = "percent"
	FormatCompact     = "compact"
	FormatNumber      = "number"
)

const placeholder = "—"

var (
	printerUS = message.NewPrinter(language.AmericanEnglish)
	printerIN = message.NewPrinter(language.MustParse("en-IN"))
)

// FormatValue renders a raw value under a format specifier. Total: it never
// fails for any input. Specifiers apply to numeric values only; everything
// else passes through as its string form, and nil becomes a placeholder.
//
// Percent follows the already-a-percentage convention: the input 12.3 means
// 12.3%, so the value is divided by 100 before percent-formatting.
func FormatValue(value any, format string) string {
	if value == nil {
		return placeholder
	}
	num, ok := toFloat(value)
	if !ok || math.IsNaN(num) || math.IsInf(num, 0) {
		return fmt.Sprint(value)
	}

	switch format {
	case FormatCurrencyUSD:
		return currencyString("$", printerUS, num)
	case FormatCurrencyINR:
		return currencyString("₹", printerIN, num)
	case FormatPercent:
		return printerUS.Sprint(number.Percent(num/100,
			number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	case FormatCompact:
		return compactString(num)
	case FormatNumber:
		return printerUS.Sprint(number.Decimal(num, number.MaxFractionDigits(2)))
	default:
		if num == math.Trunc(num) {
			return strconv.FormatFloat(num, 'f', -1, 64)
		}
		if abs := math.Abs(num); abs > 0 && abs < 0.01 {
			return strconv.FormatFloat(num, 'e', 2, 64)
		}
		return printerUS.Sprint(number.Decimal(num, number.MaxFractionDigits(2)))
	}
}

func currencyString(symbol string, p *message.Printer, num float64) string {
	sign := ""
	if num < 0 {
		sign = "-"
		num = -num
	}
	return sign + symbol + p.Sprint(number.Decimal(num,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// compactString abbreviates magnitude the way Intl compact notation does:
// 1234 -> "1.2K", 1200000 -> "1.2M". Unit boundaries shift with rounding:
// anything that would round to 1000 of a unit promotes to the next one,
// so 999999 is "1M", not "1000K".
func compactString(num float64) string {
	abs := math.Abs(num)
	var div float64
	var suffix string
	switch {
	case abs >= 999.95e9:
		div, suffix = 1e12, "T"
	case abs >= 999.95e6:
		div, suffix = 1e9, "B"
	case abs >= 999.95e3:
		div, suffix = 1e6, "M"
	case abs >= 999.95:
		div, suffix = 1e3, "K"
	default:
		return trimZero(strconv.FormatFloat(num, 'f', 1, 64))
	}
	scaled := math.Round(num/div*10) / 10
	return trimZero(strconv.FormatFloat(scaled, 'f', 1, 64)) + suffix
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
