package config

import "errors"

// ErrUnknownDriver is returned when store.driver names an unsupported backend.
var ErrUnknownDriver = errors.New("unknown store driver")

// ErrOverridden is returned by Save when the config holds runtime overrides
// that must not be written to disk.
var ErrOverridden = errors.New("config holds flag or environment overrides")

type ConfigInitError struct {
	msg string
}

func (e *ConfigInitError) Error() string {
	return e.msg
}
