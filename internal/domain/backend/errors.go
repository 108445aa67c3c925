package backend

import "errors"

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrMissingID      = errors.New("payload has no id")
	ErrInvalidPayload = errors.New("payload must be a JSON object")
)
