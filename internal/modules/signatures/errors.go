package signatures

import "errors"

var (
	ErrAlreadySigned = errors.New("party already signed")
	ErrValidation    = errors.New("validation error")
)
