package errprocess

import (
	"errors"
	"fmt"

	"edu_social_client/pkg/logger"

	"go.uber.org/zap"
)

// error kinds, match with errors.Is
var (
	// ErrNetwork backend call failed, previous state is kept
	ErrNetwork = errors.New("network error")
	// ErrValidation input rejected before any network call
	ErrValidation = errors.New("validation error")
	// ErrMalformed push payload could not be applied
	ErrMalformed = errors.New("malformed payload")
	// ErrSession no valid session for the operation
	ErrSession = errors.New("no valid session")
	// ErrForbidden session lacks the required role
	ErrForbidden = errors.New("forbidden")
	// ErrSuperseded a newer request replaced this one
	ErrSuperseded = errors.New("superseded")
)

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// Wrap log msg and return an error matching kind
func Wrap(kind error, msg string, err error) error {
	if err == nil {
		logger.Log.Error(msg, zap.String("kind", kind.Error()))
		return fmt.Errorf("%w: %s", kind, msg)
	}
	logger.Log.Error(msg, zap.String("kind", kind.Error()), zap.Error(err))
	if errors.Is(err, kind) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%w: %s: %w", kind, msg, err)
}

// Validation build a validation error without logging at error level
func Validation(msg string) error {
	logger.Log.Debug("validation", zap.String("msg", msg))
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
