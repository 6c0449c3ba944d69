package enums

import "fmt"

// RequestType is the concrete arrangement a requester asks for. A request
// always picks a single side; "both" exists only on item listings.
type RequestType string

const (
	RequestTypeExchange RequestType = "exchange"
	RequestTypeBorrow   RequestType = "borrow"
)

var validRequestTypes = []RequestType{
	RequestTypeExchange,
	RequestTypeBorrow,
}

// String implements fmt.Stringer.
func (t RequestType) String() string {
	return string(t)
}

// IsValid reports whether the value matches a known RequestType.
func (t RequestType) IsValid() bool {
	for _, candidate := range validRequestTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseRequestType converts raw input into a RequestType.
func ParseRequestType(value string) (RequestType, error) {
	for _, candidate := range validRequestTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request type %q", value)
}

// RequestStatus tracks a request through its lifecycle. Completed is part of
// the vocabulary but no transition currently produces it.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusReturned  RequestStatus = "returned"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusAccepted,
	RequestStatusRejected,
	RequestStatusCompleted,
	RequestStatusReturned,
}

// String implements fmt.Stringer.
func (s RequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known RequestStatus.
func (s RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRequestStatus converts raw input into a RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}

// PaymentStatus tracks the simulated borrow payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusCompleted,
	PaymentStatusRefunded,
}

// String implements fmt.Stringer.
func (s PaymentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known PaymentStatus.
func (s PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
