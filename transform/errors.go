package transform

import "errors"

// ErrUnknownTransform is returned when a definition names a transform that
// is not registered.
var ErrUnknownTransform = errors.New("unknown transform")
