package apiclient

import (
	"errors"
	"fmt"

	"properlytics/internal/valuation"
)

// APIError is a non-2xx response from the backend. Detail carries the
// backend's "detail" message when the body had one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api status=%d detail=%s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api status=%d", e.Status)
}

// redirectStatuses are the statuses that route to a static error view instead
// of a form-level message. A redirect wins over the local error for the same
// response; exactly one of the two fires.
var redirectStatuses = map[int]bool{
	403: true,
	500: true,
	503: true,
}

// Classify maps a transport error to the submission failure the caller acts
// on. It never navigates; the Redirect field only says where the shell should
// go.
func Classify(err error) valuation.Failure {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if redirectStatuses[apiErr.Status] {
			return valuation.Failure{Redirect: apiErr.Status}
		}
		if apiErr.Detail != "" {
			return valuation.Failure{Message: apiErr.Detail}
		}
		return valuation.Failure{Message: fmt.Sprintf("Błąd serwera: %d. Sprawdź dane.", apiErr.Status)}
	}
	if err != nil {
		return valuation.Failure{Message: "Nie można połączyć się z serwerem. Spróbuj ponownie później."}
	}
	return valuation.Failure{Message: "Wystąpił nieoczekiwany błąd aplikacji."}
}
