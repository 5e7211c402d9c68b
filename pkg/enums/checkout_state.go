package enums

// CheckoutState describes where a submission sits in the checkout flow.
type CheckoutState string

const (
	CheckoutStateConfirming       CheckoutState = "confirming"
	CheckoutStateAwaitingRedirect CheckoutState = "awaiting_payment_redirect"
)
