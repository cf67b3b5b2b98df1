/**
 * @description
 * This file defines the business rule errors the service layer returns. The
 * API layer maps them onto HTTP status codes with errors.Is / errors.As.
 */

package app

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned on login failures. It deliberately does
	// not distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrReservedUsername is returned when a registration tries to claim an
	// administrative name.
	ErrReservedUsername = errors.New("this name is reserved")

	// ErrCompleteStepOneFirst is returned when step 2 of the loan wizard runs
	// without a staged draft from step 1.
	ErrCompleteStepOneFirst = errors.New("complete step one first")

	// ErrDraftNotFound is returned when no staged draft exists for the user.
	ErrDraftNotFound = errors.New("loan draft not found")

	// ErrAmountBelowMinimum is returned when the requested principal is under
	// the configured minimum.
	ErrAmountBelowMinimum = errors.New("loan amount below minimum")

	// ErrAmountAboveMaximum is returned when the requested principal is over
	// the configured maximum.
	ErrAmountAboveMaximum = errors.New("loan amount above maximum")

	// ErrPaymentMethodInactive is returned when an application references a
	// deactivated payment method.
	ErrPaymentMethodInactive = errors.New("payment method is not active")

	// ErrInvalidLoanStatus is returned when a status write names a value
	// outside the closed status set.
	ErrInvalidLoanStatus = errors.New("invalid loan status")

	// ErrLoanStatusFinal is returned when a status write targets a rejected
	// application.
	ErrLoanStatusFinal = errors.New("loan status is final")

	// ErrDepositNotVerified is returned on approval when deposit verification
	// is enforced and the application's deposit has not been verified.
	ErrDepositNotVerified = errors.New("deposit has not been verified")

	// ErrInvalidTransferStatus is returned when a transfer status write names
	// a value outside the closed status set.
	ErrInvalidTransferStatus = errors.New("invalid transfer status")

	// ErrNotAuthorized is returned when a caller touches a record another
	// user owns.
	ErrNotAuthorized = errors.New("not authorized")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
