package scheduling

import "errors"

var (
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("not_found")
	ErrSlotUnavailable        = errors.New("slot unavailable")
	ErrUnavailableResponsible = errors.New("responsible unavailable")
)
