package store

import (
	"errors"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func errorType(err error) string {
	switch {
	case errors.Is(err, core.ErrValidation):
		return log.ErrorTypeValidation
	case errors.Is(err, ErrNotFound):
		return log.ErrorTypeNotFound
	case errors.Is(err, ErrReferentialIntegrity), errors.Is(err, core.ErrInvalidTransition):
		return log.ErrorTypeConflict
	default:
		return log.ErrorTypeInternal
	}
}
