package apperrors

import "errors"

var (
	ErrPlateNotFound       = errors.New("plate not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrOutsideWindow       = errors.New("outside pickup window")
	ErrWrongState          = errors.New("invalid reservation status")
	ErrQuotaExceeded       = errors.New("daily free plate quota exceeded")
	ErrNotOwner            = errors.New("reservation belongs to another user")
	ErrRoleNotAllowed      = errors.New("role not allowed for this operation")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidPickupCode   = errors.New("pickup code does not match")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalServerError = errors.New("internal server error")
)
