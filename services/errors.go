package services

import "errors"

// Sentinel errors returned by the persistence services so both the REST
// handlers and the socket pipeline can map them to a response (400/404)
// without inspecting strings.
var (
	ErrValidation = errors.New("missing or invalid fields")
	ErrNotFound   = errors.New("record not found")
)
