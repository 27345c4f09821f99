package perceiver

import "errors"

// Common errors. Callers match them with errors.Is.
var (
	// ErrInvalidConfig reports construction parameters the model cannot be
	// built from.
	ErrInvalidConfig = errors.New("invalid perceiver config")

	// ErrShapeMismatch reports an input or mask whose shape does not fit the
	// model. It is returned before any computation starts.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// ErrCheckpointMismatch reports a weights file whose tensors do not line up
// with the model's parameters.
var ErrCheckpointMismatch = errors.New("checkpoint does not match model")
