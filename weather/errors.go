package weather

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a fetch failed.
type FailureKind int

const (
	// KindNone means the error is nil or not a fetch failure.
	KindNone FailureKind = iota
	// KindCityNotFound means the upstream answered 404 for the city.
	KindCityNotFound
	// KindUpstream means the upstream answered with another non-success status.
	KindUpstream
	// KindTransport means the request never completed or the payload was unusable.
	KindTransport
)

func (k FailureKind) String() string {
	switch k {
	case KindCityNotFound:
		return "CityNotFound"
	case KindUpstream:
		return "UpstreamError"
	case KindTransport:
		return "TransportError"
	default:
		return "None"
	}
}

// CityNotFoundError is returned when the upstream does not know the city.
type CityNotFoundError struct {
	City string
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("City '%s' not found", e.City)
}

// UpstreamError is returned when the upstream answers with a non-success status other than 404.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Weather API error: %d", e.StatusCode)
}

// TransportError is returned when the request could not be completed: network failures,
// cancellation and malformed payloads.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "Failed to fetch weather data: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// KindOf returns the failure kind carried by err.
func KindOf(err error) FailureKind {
	var (
		notFound  *CityNotFoundError
		upstream  *UpstreamError
		transport *TransportError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &notFound):
		return KindCityNotFound
	case errors.As(err, &upstream):
		return KindUpstream
	case errors.As(err, &transport):
		return KindTransport
	default:
		return KindNone
	}
}
