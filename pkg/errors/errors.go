package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrValidation             = errors.New("validation failed")
	ErrInvalidDate            = errors.New("invalid calendar date")
	ErrSaleNotFound           = errors.New("sale not found")
	ErrInstallmentNotFound    = errors.New("installment not found")
	ErrInstallmentAlreadyPaid = errors.New("installment is already paid")
	ErrInvalidPaymentAmount   = errors.New("invalid payment amount")
	ErrDuplicatePayment       = errors.New("payment already submitted")
	ErrPaymentConflict        = errors.New("installment changed concurrently")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeInvalidDate            = "INVALID_DATE"
	ErrCodeSaleNotFound           = "SALE_NOT_FOUND"
	ErrCodeInstallmentNotFound    = "INSTALLMENT_NOT_FOUND"
	ErrCodeInstallmentAlreadyPaid = "INSTALLMENT_ALREADY_PAID"
	ErrCodeInvalidPaymentAmount   = "INVALID_PAYMENT_AMOUNT"
	ErrCodeDuplicatePayment       = "DUPLICATE_PAYMENT"
	ErrCodePaymentConflict        = "PAYMENT_CONFLICT"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
	ErrCodeCacheError             = "CACHE_ERROR"
)

// CodeOf returns the code of the first BusinessError in err's chain, or "".
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Wrap common errors with business context
func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapInvalidDate(value string, cause error) *BusinessError {
	err := ErrInvalidDate
	if cause != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidDate, cause)
	}
	return NewBusinessError(
		ErrCodeInvalidDate,
		fmt.Sprintf("cannot interpret %q as a calendar date", value),
		err,
	)
}

func WrapSaleNotFound(saleID string) *BusinessError {
	return NewBusinessError(
		ErrCodeSaleNotFound,
		fmt.Sprintf("Sale with ID %s not found", saleID),
		ErrSaleNotFound,
	)
}

func WrapInstallmentNotFound(saleID string, sequence int) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment %d of sale %s not found", sequence, saleID),
		ErrInstallmentNotFound,
	)
}

func WrapInstallmentAlreadyPaid(saleID string, sequence int) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentAlreadyPaid,
		fmt.Sprintf("Installment %d of sale %s is already paid", sequence, saleID),
		ErrInstallmentAlreadyPaid,
	)
}

func WrapInvalidPaymentAmount(amount, reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount %s: %s", amount, reason),
		ErrInvalidPaymentAmount,
	)
}

func WrapDuplicatePayment(key string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicatePayment,
		fmt.Sprintf("Payment with idempotency key %s was already submitted", key),
		ErrDuplicatePayment,
	)
}

func WrapPaymentConflict(saleID string, sequence int) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentConflict,
		fmt.Sprintf("Installment %d of sale %s changed while the payment was recorded, retry", sequence, saleID),
		ErrPaymentConflict,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
