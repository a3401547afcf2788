// FilePath: internal/errors/errors.go
package errors

import "fmt"

// ErrorType represents the type of error
type ErrorType string

const (
	// Error types
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeSensor    ErrorType = "sensor"
	ErrorTypeRender    ErrorType = "render"
	ErrorTypeSession   ErrorType = "session"
	ErrorTypeDiscovery ErrorType = "discovery"
	ErrorTypeUpload    ErrorType = "upload"
	ErrorTypeInternal  ErrorType = "internal"
)

// AgentError represents a structured agent error. ExitCode is the suggested
// process exit code for startup-fatal errors; per-tick errors are logged and
// never exit.
type AgentError struct {
	Type     ErrorType
	Message  string
	ExitCode int
	Details  any
	err      error // Internal error for logging
}

// Error implements the error interface
func (e *AgentError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the wrapped error to errors.Is/As
func (e *AgentError) Unwrap() error {
	return e.err
}

// WithDetails adds additional details to the error
func (e *AgentError) WithDetails(details any) *AgentError {
	e.Details = details
	return e
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, err error) *AgentError {
	return &AgentError{
		Type:     ErrorTypeConfig,
		Message:  msg,
		ExitCode: 2,
		err:      err,
	}
}

// NewSensorError creates a new sensor error
func NewSensorError(msg string, err error) *AgentError {
	return &AgentError{
		Type:     ErrorTypeSensor,
		Message:  msg,
		ExitCode: 1,
		err:      err,
	}
}

// NewRenderError creates a new renderer error
func NewRenderError(msg string, err error) *AgentError {
	return &AgentError{
		Type:     ErrorTypeRender,
		Message:  msg,
		ExitCode: 1,
		err:      err,
	}
}

// NewSessionError creates a new daemon session error
func NewSessionError(msg string, err error) *AgentError {
	return &AgentError{
		Type:     ErrorTypeSession,
		Message:  msg,
		ExitCode: 1,
		err:      err,
	}
}

// NewDiscoveryError creates a new device discovery error
func NewDiscoveryError(msg string, err error) *AgentError {
	return &AgentError{
		Type:     ErrorTypeDiscovery,
		Message:  msg,
		ExitCode: 1,
		err:      err,
	}
}

// NewUploadError creates a new frame upload error
func NewUploadError(msg string, err error) *AgentError {
	return &AgentError{
		Type:     ErrorTypeUpload,
		Message:  msg,
		ExitCode: 1,
		err:      err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(msg string, err error) *AgentError {
	return &AgentError{
		Type:     ErrorTypeInternal,
		Message:  msg,
		ExitCode: 1,
		err:      err,
	}
}

// IsUpload checks if an error is an Upload error
func IsUpload(err error) bool {
	if agentErr, ok := err.(*AgentError); ok {
		return agentErr.Type == ErrorTypeUpload
	}
	return false
}

// IsRender checks if an error is a Render error
func IsRender(err error) bool {
	if agentErr, ok := err.(*AgentError); ok {
		return agentErr.Type == ErrorTypeRender
	}
	return false
}

// IsSession checks if an error is a Session error
func IsSession(err error) bool {
	if agentErr, ok := err.(*AgentError); ok {
		return agentErr.Type == ErrorTypeSession
	}
	return false
}

// IsDiscovery checks if an error is a Discovery error
func IsDiscovery(err error) bool {
	if agentErr, ok := err.(*AgentError); ok {
		return agentErr.Type == ErrorTypeDiscovery
	}
	return false
}

// ExitCode returns the suggested exit code for err, or 1 for plain errors
func ExitCode(err error) int {
	if agentErr, ok := err.(*AgentError); ok && agentErr.ExitCode > 0 {
		return agentErr.ExitCode
	}
	return 1
}
