package models

import "strings"

// TravelRequestStatus is the lifecycle state of a travel request. It is a
// plain tagged value; transition policy lives in the lookup table below
// rather than in methods, so representation stays decoupled from policy.
type TravelRequestStatus string

const (
	// StatusRequested is the initial state of every travel request.
	StatusRequested TravelRequestStatus = "requested"
	// StatusApproved means an administrator accepted the request.
	StatusApproved TravelRequestStatus = "approved"
	// StatusCancelled is terminal; no transition leaves it.
	StatusCancelled TravelRequestStatus = "cancelled"
)

// allowedTransitions maps each status to the set of statuses it may move to.
var allowedTransitions = map[TravelRequestStatus][]TravelRequestStatus{
	StatusRequested: {StatusApproved, StatusCancelled},
	StatusApproved:  {StatusCancelled},
	StatusCancelled: {},
}

// ParseStatus converts a wire value into a TravelRequestStatus.
func ParseStatus(v string) (TravelRequestStatus, bool) {
	switch s := TravelRequestStatus(strings.ToLower(v)); s {
	case StatusRequested, StatusApproved, StatusCancelled:
		return s, true
	}
	return "", false
}

// StatusLabel returns the human-readable label for a status.
func StatusLabel(s TravelRequestStatus) string {
	switch s {
	case StatusRequested:
		return "Requested"
	case StatusApproved:
		return "Approved"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// ValidateTransition reports whether a travel request may move from current
// to next. It is a pure function of the two values; it knows nothing about
// who is asking.
func ValidateTransition(current, next TravelRequestStatus) error {
	if current == StatusApproved && next != StatusCancelled {
		return NewFieldValidationError(map[string][]string{
			"status": {"Approved requests can only be cancelled, not reverted or changed to another status"},
		}, "Invalid transition: request already approved")
	}

	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return nil
		}
	}

	msg := "Cannot change status from \"" + StatusLabel(current) + "\" to \"" + StatusLabel(next) + "\""
	return NewFieldValidationError(map[string][]string{"status": {msg}}, msg)
}

// CanBeApproved reports whether a request in status s may still be approved.
func CanBeApproved(s TravelRequestStatus) bool {
	return s == StatusRequested
}

// CanBeCancelled reports whether a request in status s may still be cancelled
// by some path (the cancel endpoint is stricter; see the policy package).
func CanBeCancelled(s TravelRequestStatus) bool {
	return s == StatusRequested || s == StatusApproved
}

// IsActive reports whether the request still represents planned travel.
func IsActive(s TravelRequestStatus) bool {
	return s == StatusRequested || s == StatusApproved
}
