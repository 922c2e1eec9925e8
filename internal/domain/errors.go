package domain

import "strings"

// FieldError is a single validation failure surfaced to the caller. These are
// domain values, not Go errors: a request with violations is a handled
// outcome, not a fault.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Reason codes carried by FieldError and by Ticket.RejectionReason.
const (
	ReasonExpiredWarranty = "EXPIRED_WARRANTY"
	ReasonMissingInvoice  = "MISSING_INVOICE"
	ReasonInvalidSerial   = "INVALID_SERIAL"

	reasonMissingFieldPrefix  = "MISSING_FIELD:"
	reasonInvalidFormatPrefix = "INVALID_FORMAT:"
)

// MissingField builds a required-field violation for the given JSON path.
func MissingField(path string) FieldError {
	return FieldError{Field: path, Reason: reasonMissingFieldPrefix + path}
}

// InvalidFormat builds a format violation for the given JSON path.
func InvalidFormat(path string) FieldError {
	return FieldError{Field: path, Reason: reasonInvalidFormatPrefix + path}
}

// ReasonClass strips the field suffix from a reason code, leaving the class
// (MISSING_FIELD, INVALID_FORMAT, ...). Used for low-cardinality metric
// labels.
func ReasonClass(reason string) string {
	if i := strings.IndexByte(reason, ':'); i >= 0 {
		return reason[:i]
	}
	return reason
}
