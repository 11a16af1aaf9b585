package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is matched by every ConfigurationError.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// A ConfigurationError names a geometry or cost parameter that prevents a
// cache from being built.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s = %v %s",
		e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidConfiguration) match.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}
