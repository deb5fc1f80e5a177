package app

import (
	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

var (
	ErrNotFound    = ports.ErrNotFound
	ErrUnavailable = ports.ErrUnavailable
)

// CodedError porte un code stable pour les erreurs de l'API catalogue.
//
// Codes: invalid_params, http_status, network_error, bad_payload.
type CodedError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *CodedError) Unwrap() error { return e.Err }
