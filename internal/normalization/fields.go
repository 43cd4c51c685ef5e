package normalization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// maxValueLen bounds the raw value echoed back in errors and logs.
const maxValueLen = 64

// dateLayouts are tried in order. Layouts without a zone are interpreted
// in the normalizer's configured location.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// isNull reports whether a raw field is absent or JSON null.
func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// scalarText returns the text of a JSON string or number.
// Booleans, arrays and objects are rejected.
func scalarText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		return "", errRequired
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	case trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9'):
		return string(trimmed), nil
	default:
		return "", errNotNumber
	}
}

// parseDecimal parses a required decimal from a string or number.
// JSON numbers are read from their literal text, never through float64.
func parseDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	if isNull(raw) {
		return decimal.Zero, errRequired
	}
	text, err := scalarText(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if text == "" {
		return decimal.Zero, errRequired
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", errNotNumber, err)
	}
	return d, nil
}

// parseOptionalDecimal parses a nullable decimal. Null, a missing field and
// an empty string all mean "no value"; anything else must parse.
func parseOptionalDecimal(raw json.RawMessage) (*decimal.Decimal, error) {
	if isNull(raw) {
		return nil, nil
	}
	text, err := scalarText(raw)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errNotNumber, err)
	}
	return &d, nil
}

// parseInteger parses an integer given as a string or number.
// "12" and 12 and 12.0 are accepted; 12.5 and "12abc" are not. The range is
// that of int, so exchange ids past 2^31 fit on 64-bit targets.
func parseInteger(raw json.RawMessage) (int, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, errNotInteger
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt)) || d.LessThan(decimal.NewFromInt(math.MinInt)) {
		return 0, fmt.Errorf("%w: out of range", errNotInteger)
	}
	return int(d.IntPart()), nil
}

// parseOptionalInteger parses a nullable integer. An empty string is
// treated like null.
func parseOptionalInteger(raw json.RawMessage) (*int, error) {
	if isNull(raw) {
		return nil, nil
	}
	if s, err := scalarText(raw); err == nil && s == "" {
		return nil, nil
	}
	n, err := parseInteger(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// parseString parses a nullable passthrough string. Numbers are kept as
// their literal text.
func parseString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	if trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9') {
		return string(trimmed), nil
	}
	return "", errNotString
}

// parseDate parses a required ISO-8601 date string.
func parseDate(raw json.RawMessage, loc *time.Location) (time.Time, error) {
	if isNull(raw) {
		return time.Time{}, errRequired
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] != '"' {
		return time.Time{}, errNotString
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return time.Time{}, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errRequired
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errUnknownDate
}

// parseOptionalDate parses a nullable date. Null, a missing field and an
// empty string all mean "no date".
func parseOptionalDate(raw json.RawMessage, loc *time.Location) (*time.Time, error) {
	if isNull(raw) {
		return nil, nil
	}
	if s, err := scalarText(raw); err == nil && s == "" {
		return nil, nil
	}
	t, err := parseDate(raw, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// displayValue renders a raw value for error messages.
func displayValue(raw json.RawMessage) string {
	s := string(bytes.TrimSpace(raw))
	if s == "" {
		return "<missing>"
	}
	return truncateRunes(s, maxValueLen)
}

// truncateRunes cuts s to at most n bytes without splitting a UTF-8 rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
