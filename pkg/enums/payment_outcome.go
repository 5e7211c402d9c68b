package enums

import "fmt"

// PaymentOutcome is the terminal classification of a payment-result
// resolution. Approved and in-process come straight from the backend;
// rejected covers every other confirmed status; unverified means the
// gateway could not reach the backend at all.
type PaymentOutcome string

const (
	PaymentOutcomeApproved   PaymentOutcome = "approved"
	PaymentOutcomeInProcess  PaymentOutcome = "in_process"
	PaymentOutcomeRejected   PaymentOutcome = "rejected"
	PaymentOutcomeUnverified PaymentOutcome = "unverified"
)

var validPaymentOutcomes = []PaymentOutcome{
	PaymentOutcomeApproved,
	PaymentOutcomeInProcess,
	PaymentOutcomeRejected,
	PaymentOutcomeUnverified,
}

// IsValid reports whether the value matches the canonical payment outcome enum.
func (p PaymentOutcome) IsValid() bool {
	for _, candidate := range validPaymentOutcomes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentOutcome converts the raw string to PaymentOutcome.
func ParsePaymentOutcome(value string) (PaymentOutcome, error) {
	for _, candidate := range validPaymentOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment outcome %q", value)
}
