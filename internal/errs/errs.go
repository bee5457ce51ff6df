// Package errs defines the error taxonomy shared by boxsync commands.
// Each type is matched with errors.As at the command boundary.
package errs

import (
	"errors"
	"fmt"
)

// ErrNoHosts is wrapped by ConfigurationError when no host is configured.
var ErrNoHosts = errors.New("no hosts configured")

// ConfigurationError reports missing or unusable configuration.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Message, e.Err)
	}
	return "configuration: " + e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NoHostsConfigured returns the error reported when a sync has nowhere to go.
func NoHostsConfigured() error {
	return &ConfigurationError{
		Message: "add one with 'boxsync host add' or set an override with 'boxsync host set'",
		Err:     ErrNoHosts,
	}
}

// ValidationError reports invalid user input.
type ValidationError struct {
	// Field is the name of the input that failed validation
	Field string
	// Message describes the failure
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %q: %s", e.Field, e.Message)
}

// TransportError reports a network failure talking to a host.
type TransportError struct {
	Host string
	Op   string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Host, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError reports that a remote path does not exist on a host.
type NotFoundError struct {
	Host string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found on %s: %s", e.Host, e.Path)
}

// FileSystemError reports a local filesystem failure.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }

// Kind returns a short label for the error's category, used in summaries.
func Kind(err error) string {
	var (
		cfgErr *ConfigurationError
		valErr *ValidationError
		trErr  *TransportError
		nfErr  *NotFoundError
		fsErr  *FileSystemError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &nfErr):
		return "not found"
	case errors.As(err, &trErr):
		return "transport"
	case errors.As(err, &fsErr):
		return "filesystem"
	case errors.As(err, &valErr):
		return "validation"
	case errors.As(err, &cfgErr):
		return "configuration"
	default:
		return "error"
	}
}
