package entity

// PaymentStatusFromGateway maps the gateway's payment-status vocabulary onto
// the internal one. Unknown values map to pending so an unexpected status
// never flips an order into a terminal state.
func PaymentStatusFromGateway(status string) PaymentStatus {
	switch status {
	case "approved":
		return PaymentApproved
	case "pending", "in_process":
		return PaymentPending
	case "rejected":
		return PaymentRejected
	case "cancelled", "refunded":
		return PaymentCancelled
	default:
		return PaymentPending
	}
}

// FulfillmentForPayment derives the fulfillment status coupled to a payment
// status: an order enters processing if and only if its payment is approved.
func FulfillmentForPayment(status PaymentStatus) FulfillmentStatus {
	if status == PaymentApproved {
		return FulfillmentProcessing
	}
	return FulfillmentPending
}
