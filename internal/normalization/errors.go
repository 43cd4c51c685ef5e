package normalization

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is the sentinel wrapped by every normalization failure.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError identifies the record and field that failed to
// normalize. ID is only set when the Id field itself was parseable.
type MalformedRecordError struct {
	Index int    // position of the record in the batch
	ID    *int   // order id, nil if unparseable
	Field string // wire field name, e.g. "BuyDate"
	Value string // offending raw value, truncated
	Err   error  // underlying parse error
}

func (e *MalformedRecordError) Error() string {
	who := fmt.Sprintf("record #%d", e.Index)
	if e.ID != nil {
		who = fmt.Sprintf("order %d", *e.ID)
	}
	return fmt.Sprintf("%s: %s: field %s = %s: %v", ErrMalformedRecord, who, e.Field, e.Value, e.Err)
}

// Unwrap lets errors.Is match ErrMalformedRecord.
func (e *MalformedRecordError) Unwrap() []error {
	return []error{ErrMalformedRecord, e.Err}
}

// LogAttrs returns slog key/value pairs describing the failure.
func (e *MalformedRecordError) LogAttrs() []any {
	attrs := []any{"index", e.Index, "field", e.Field, "value", e.Value}
	if e.ID != nil {
		attrs = append(attrs, "order_id", *e.ID)
	}
	return append(attrs, "error", e.Err)
}

// Field parse errors.
var (
	errRequired    = errors.New("value is required")
	errNotInteger  = errors.New("not an integer")
	errNotNumber   = errors.New("not a number")
	errNotString   = errors.New("not a string")
	errNegative    = errors.New("must not be negative")
	errUnknownDate = errors.New("unrecognized date format")
)
