package mail

import "errors"

// ErrMessageNotFound is returned when a requested message id is unknown.
var ErrMessageNotFound = errors.New("message not found")
