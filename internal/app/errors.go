package app

import "errors"

// Kind classifies an Error. Transports map kinds to status codes while
// the Message carries the exact user-facing text, so a Forbidden and an
// Internal failure can share one wire message without losing the
// distinction in logs.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
	KindInternal
)

// Error is a user-facing domain error. Message is part of the API
// contract and must be returned verbatim; Err holds the internal cause
// for logging only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// E builds a domain error with a fixed user-facing message.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a domain error carrying an internal cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// Exact user-facing messages. These strings are load-bearing: clients
// match on them, so they must not be reworded.
const (
	MsgLoginRequired         = "Please login"
	MsgLoginRequiredMutation = "Please login to continue"

	MsgOrdersUnauthorized = "Unauthorized access to orders"
	MsgOrderUnauthorized  = "Unauthorized access to order"
	MsgOrderNotFound      = "Order not found"
	MsgStudentNotFound    = "Student not found"

	MsgPaymentNotFound    = "Payment not found"
	MsgAssignmentNotFound = "Assignment not found"
	MsgReviewNotFound     = "Review not found"
	MsgUserNotFound       = "User not found"

	MsgNoOrders      = "No orders found for this user"
	MsgNoPayments    = "No payments found for this user"
	MsgNoAssignments = "No assignments found for this user"
	MsgNoReviews     = "No reviews found for this user"

	// Phase 2 responds softly with a trailing period; phase 3 throws
	// without one. Clients depend on both spellings.
	MsgTokenInvalidSoft   = "Invalid or expired token."
	MsgTokenInvalidThrown = "Invalid or expired token"

	MsgCompletionFailed  = "An error occurred while completing registration."
	MsgCompletionSuccess = "Registration completed successfully and order created."

	MsgAssignmentCreateForbidden = "Only admins and QA can create assignments"
	MsgAssignmentUpdateForbidden = "Only the assigned writer can update this assignment"
	MsgAssignmentDeleteForbidden = "Only admins and QA can delete assignments"
	MsgAssignmentsUnauthorized   = "Unauthorized access to assignments"
	MsgReviewCreateForbidden     = "Only QA members can create reviews"
	MsgReviewUpdateForbidden     = "Only the review author or reviewed writer can update this review"
	MsgReviewDeleteForbidden     = "Only the review author can delete this review"
	MsgReviewsUnauthorized       = "Unauthorized access to reviews"
	MsgPaymentUnauthorized       = "Unauthorized access to payment"
	MsgPaymentsUnauthorized      = "Unauthorized access to payments"
	MsgAdminOnly                 = "Admin access required"

	MsgInvalidCredentials = "Incorrect email address or password"
	MsgEmailExists        = "Email already registered"
)

// Shared sentinels for callers that branch on an error rather than a
// kind.
var (
	ErrUnauthenticatedQuery    = E(KindUnauthenticated, MsgLoginRequired)
	ErrUnauthenticatedMutation = E(KindUnauthenticated, MsgLoginRequiredMutation)
)
