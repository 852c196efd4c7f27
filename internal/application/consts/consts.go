package consts

// BookingPaymentStatus tracks the charge side of a booking.
type BookingPaymentStatus string

const (
	PaymentStatusPending BookingPaymentStatus = "pending"
	PaymentStatusPaid    BookingPaymentStatus = "paid"
	PaymentStatusFailed  BookingPaymentStatus = "failed"
)

// BookingPayoutStatus tracks settlement of a booking towards the connected
// account. Linear progression: pending -> transferred -> paid_out, or failed.
type BookingPayoutStatus string

const (
	PayoutStatusPending     BookingPayoutStatus = "pending"
	PayoutStatusTransferred BookingPayoutStatus = "transferred"
	PayoutStatusPaidOut     BookingPayoutStatus = "paid_out"
	PayoutStatusFailed      BookingPayoutStatus = "failed"
)

type RevenueTransactionStatus string

const (
	RevenueStatusPending   RevenueTransactionStatus = "pending"
	RevenueStatusSucceeded RevenueTransactionStatus = "succeeded"
	RevenueStatusFailed    RevenueTransactionStatus = "failed"
)
