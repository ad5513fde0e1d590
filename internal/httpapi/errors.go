package httpapi

import (
	"errors"
	"net/http"

	"github.com/nikolayk812/storefront/internal/apimodel"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/service"
)

const genericMessage = "internal error"

// httpStatusFromError maps an error to status, stable code and a message safe to show users.
func httpStatusFromError(err error) (int, string, string) {
	var opErr *service.OperationError
	isOp := errors.As(err, &opErr)

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, apimodel.CodeInvalidArgument, err.Error()
	case errors.Is(err, domain.ErrCartNotFound):
		return http.StatusNotFound, apimodel.CodeCartNotFound, domain.ErrCartNotFound.Error()
	case errors.Is(err, catalog.ErrProductNotFound):
		return http.StatusNotFound, apimodel.CodeNotFound, catalog.ErrProductNotFound.Error()
	case errors.Is(err, catalog.ErrUnavailable):
		return http.StatusServiceUnavailable, apimodel.CodeUnavailable, catalog.ErrUnavailable.Error()
	case isOp:
		return http.StatusInternalServerError, apimodel.CodeInternal, opErr.Error()
	default:
		return http.StatusInternalServerError, apimodel.CodeInternal, genericMessage
	}
}

func badRequest(message string) error {
	return &requestError{message: message}
}

type requestError struct {
	message string
}

func (e *requestError) Error() string { return e.message }

func (e *requestError) Unwrap() error { return domain.ErrInvalidArgument }
