package errors

import (
	"encoding/json"
	"net/http"
)

type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToHTTPError maps an error kind to its transport representation. This is the only
// place where error kinds become status codes.
func ToHTTPError(err error) *HTTPError {
	var (
		badRequest *BadRequestError
		validation *ValidationError
		notFound   *NotFoundError
		auth       *AuthenticationError
		cfg        *ConfigurationError
		transition *InvalidTransitionError
		duplicate  *TransactionDuplicateError
		tooLarge   *PayloadTooLargeError
		upstream   *UpstreamError
	)

	switch {
	case As(err, &badRequest):
		return &HTTPError{Code: http.StatusBadRequest, Message: badRequest.Error()}
	case As(err, &validation):
		return &HTTPError{Code: http.StatusBadRequest, Message: validation.Error()}
	case As(err, &notFound):
		return &HTTPError{Code: http.StatusNotFound, Message: notFound.Error()}
	case As(err, &auth):
		return &HTTPError{Code: http.StatusUnauthorized, Message: auth.Error()}
	case As(err, &cfg):
		return &HTTPError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	case As(err, &transition):
		return &HTTPError{Code: http.StatusConflict, Message: transition.Error()}
	case As(err, &duplicate):
		return &HTTPError{Code: http.StatusUnprocessableEntity, Message: duplicate.Error()}
	case As(err, &tooLarge):
		return &HTTPError{Code: http.StatusRequestEntityTooLarge, Message: tooLarge.Error()}
	case As(err, &upstream):
		return &HTTPError{Code: http.StatusBadGateway, Message: "Upstream service unavailable"}
	default:
		return &HTTPError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	}
}

// HandleHTTPError handles http errors
func HandleHTTPError(w http.ResponseWriter, err error) {
	httpErr := ToHTTPError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Code)
	json.NewEncoder(w).Encode(httpErr)
}
