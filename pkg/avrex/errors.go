package avrex

import (
	"fmt"
	"strings"
)

// ConfigurationError is returned by New when credentials or the login URL are
// missing from both the arguments and the environment.
type ConfigurationError struct {
	Missing []string // environment variable names of the missing settings
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: pass it explicitly or set %s", strings.Join(e.Missing, ", "))
}

// LoginError is returned when the portal rejects the login or the login flow
// no longer matches what the portal serves. A Client is never returned
// alongside it; construct a new one to try again.
type LoginError struct {
	URL     string
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	return "login failed: " + e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// UnknownChoiceError is returned when a report or format key matches no option
// offered by the portal.
type UnknownChoiceError struct {
	Kind string // "report" or "format"
	Key  string
}

func (e *UnknownChoiceError) Error() string {
	return fmt.Sprintf("no such %s: %q", e.Kind, e.Key)
}
