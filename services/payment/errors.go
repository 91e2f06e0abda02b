package payment

import "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

var (
	// ErrPaymentNotFound is returned when the payment id resolves to nothing.
	ErrPaymentNotFound = utils.NewError(utils.KindNotFound, "PAYMENT_NOT_FOUND", "payment not found")
	// ErrAlreadySettled is returned when the booking has no outstanding
	// balance to open a session for.
	ErrAlreadySettled = utils.NewError(utils.KindConflict, "DUPLICATE_PAYMENT", "booking is already fully paid")
	// ErrBookingClosed rejects sessions on terminal bookings.
	ErrBookingClosed = utils.NewError(utils.KindConflict, "BOOKING_CLOSED", "booking is closed, no further payments are possible")
	// ErrNoDeposit is returned when a remainder is requested before any
	// deposit has settled.
	ErrNoDeposit = utils.NewError(utils.KindConflict, "NO_DEPOSIT", "no settled deposit to pay a remainder against")
	// ErrNotRefundable is returned when a refund targets a payment that is
	// not in paid status.
	ErrNotRefundable = utils.NewError(utils.KindConflict, "NOT_REFUNDABLE", "only paid payments can be refunded")
	// ErrInvalidSignature rejects webhooks whose signature does not verify
	// (only surfaced when lenient acknowledgement is disabled).
	ErrInvalidSignature = utils.NewError(utils.KindValidation, "INVALID_SIGNATURE", "webhook signature does not verify")
	// ErrMalformedWebhook rejects deliveries that are not valid JSON.
	ErrMalformedWebhook = utils.NewError(utils.KindValidation, "MALFORMED_WEBHOOK", "webhook body could not be parsed")
)
