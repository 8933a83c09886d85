package service

import "errors"

var (
	// ErrNotFound indicates the requested list or task does not exist remotely.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous indicates a list name matched more than one list.
	ErrAmbiguous = errors.New("ambiguous list name")

	// ErrAuth indicates missing, invalid or revoked credentials.
	ErrAuth = errors.New("not authorized")
)
