package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/shopledger/internal/journal"
	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/platform/httpx"
)

// WriteError maps domain errors onto RFC7807 responses. Unexpected errors are
// logged and reported without detail.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(verrs))
	case errors.Is(err, ErrNotFound), errors.Is(err, journal.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrIdempotencyConflict), errors.Is(err, journal.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, journal.ErrClosed):
		httpx.Problem(w, http.StatusConflict, "Closed", err.Error())
	case errors.Is(err, ledger.ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	case ledger.IsValidation(err), errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	default:
		httpx.RespondError(w, err)
		if logger != nil && !isKnownHTTPError(err) {
			logger.Error("request failed", slog.Any("error", err))
		}
	}
}

func isKnownHTTPError(err error) bool {
	return errors.Is(err, httpx.ErrNotFound) || errors.Is(err, httpx.ErrValidation) ||
		errors.Is(err, httpx.ErrDuplicate) || errors.Is(err, httpx.ErrForbidden) ||
		errors.Is(err, httpx.ErrUnauthorized)
}

func validationDetail(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return ""
	}
	msg := ""
	for i, fe := range errs {
		if i > 0 {
			msg += "; "
		}
		msg += fe.Field() + " failed " + fe.Tag()
	}
	return msg
}
