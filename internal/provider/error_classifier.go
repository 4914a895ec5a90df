package provider

import (
	"errors"
	"strings"
)

// ProviderError wraps a rejected send with the backend's response details.
// Nothing in this service retries; Permanent only tells the operator whether
// resubmitting could help.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Permanent  bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Message
}

// IsPermanent reports whether err is a ProviderError marked permanent.
func IsPermanent(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Permanent
	}
	return false
}

var permanentBodyHints = []string{
	"invalid recipient",
	"invalid email",
	"invalid address",
	"does not exist",
	"mailbox not found",
	"invalid api key",
	"unauthorized",
}

// ClassifyHTTPError builds a ProviderError from an API status code and
// response body. It returns nil for 2xx responses.
func ClassifyHTTPError(providerName string, statusCode int, body string) *ProviderError {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	pe := &ProviderError{
		Provider:   providerName,
		StatusCode: statusCode,
		Message:    body,
	}

	switch {
	case statusCode == 429 || statusCode == 408:
		pe.Permanent = false
	case statusCode == 401 || statusCode == 403 || statusCode == 404:
		pe.Permanent = true
	case statusCode >= 400 && statusCode < 500:
		pe.Permanent = statusCode != 400 || hasPermanentHint(body)
	default:
		pe.Permanent = hasPermanentHint(body)
	}

	return pe
}

func hasPermanentHint(body string) bool {
	lower := strings.ToLower(body)
	for _, hint := range permanentBodyHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
