package response

import (
	"errors"
	"net/http"

	"go-coin-wallet/internal/entity"
)

type CustomError struct {
	Status         bool        `json:"status"`
	StatusCode     int         `json:"-"`
	Message        string      `json:"message"`
	AdditionalInfo interface{} `json:"additional_info,omitempty"`
}

func (e *CustomError) Error() string {
	return e.Message
}

func newError(code int, message string) *CustomError {
	return &CustomError{StatusCode: code, Message: message}
}

func BadRequestError(message string) *CustomError {
	return newError(http.StatusBadRequest, message)
}

func NotFoundError(message string) *CustomError {
	return newError(http.StatusNotFound, message)
}

func ForbiddenError(message string) *CustomError {
	return newError(http.StatusForbidden, message)
}

func ConflictError(message string) *CustomError {
	return newError(http.StatusConflict, message)
}

func TooManyRequestsError(message string) *CustomError {
	return newError(http.StatusTooManyRequests, message)
}

func GeneralError(message string) *CustomError {
	return newError(http.StatusInternalServerError, message)
}

// RepositoryError is returned when the store is unreachable or failed unexpectedly.
func RepositoryError(message string) *CustomError {
	return newError(http.StatusServiceUnavailable, message)
}

func UnauthorizedErrorWithAdditionalInfo(info interface{}, message ...string) *CustomError {
	msg := "unauthorized"
	if len(message) > 0 {
		msg = message[0]
	}
	return &CustomError{StatusCode: http.StatusUnauthorized, Message: msg, AdditionalInfo: info}
}

// FromDomainError maps ledger errors onto HTTP errors. Unknown errors become a
// service-unavailable error carrying fallback as the message.
func FromDomainError(err error, fallback string) *CustomError {
	var custErr *CustomError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &custErr):
		return custErr
	case errors.Is(err, entity.ErrInsufficientFunds):
		return BadRequestError("insufficient balance")
	case errors.Is(err, entity.ErrInvalidAmount):
		return BadRequestError("invalid amount")
	case errors.Is(err, entity.ErrInvalidExchangeRate):
		return BadRequestError("invalid exchange rate")
	case errors.Is(err, entity.ErrInactiveWallet):
		return ForbiddenError("wallet is inactive")
	case errors.Is(err, entity.ErrPackageForbidden):
		return ForbiddenError("package is not available for your role")
	case errors.Is(err, entity.ErrWalletNotFound):
		return NotFoundError("wallet not found")
	case errors.Is(err, entity.ErrTransactionNotFound):
		return NotFoundError("transaction not found")
	case errors.Is(err, entity.ErrSettingsNotFound):
		return NotFoundError("coin settings not found")
	case errors.Is(err, entity.ErrPackageNotFound):
		return NotFoundError("package not found")
	case errors.Is(err, entity.ErrInvalidStateTransition):
		return ConflictError("invalid transaction state transition")
	case errors.Is(err, entity.ErrAlreadyReversed):
		return ConflictError("transaction already reversed")
	case errors.Is(err, entity.ErrDuplicateReference):
		return ConflictError("duplicate reference id")
	case errors.Is(err, entity.ErrDefaultRateInUse):
		return ConflictError("default exchange rate cannot be deactivated")
	case errors.Is(err, entity.ErrConcurrentUpdate):
		return ConflictError("wallet was modified concurrently, retry")
	case errors.Is(err, entity.ErrUserNotFound):
		return NotFoundError("user not found")
	case errors.Is(err, entity.ErrEmailTaken):
		return ConflictError("user with this email already exists")
	case errors.Is(err, entity.ErrWalletExists):
		return ConflictError("wallet already exists")
	case errors.Is(err, entity.ErrInvalidTransactionType):
		return GeneralError("invalid transaction type")
	case errors.Is(err, entity.ErrNoActiveRateConfigured):
		return GeneralError("no active exchange rate configured")
	default:
		return RepositoryError(fallback)
	}
}
