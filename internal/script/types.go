package script

import (
	"errors"
	"time"
)

// ScriptSource indicates where a script was loaded from
type ScriptSource string

const (
	SourceEmbedded ScriptSource = "embedded"
	SourceExternal ScriptSource = "external"
)

// ErrorType categorizes different types of script errors
type ErrorType string

const (
	ErrorTypeCompilation   ErrorType = "compilation"
	ErrorTypeExecution     ErrorType = "execution"
	ErrorTypeTimeout       ErrorType = "timeout"
	ErrorTypeInvalidInput  ErrorType = "invalid_input"
	ErrorTypeInvalidIntent ErrorType = "invalid_intent"
	ErrorTypeNotFound      ErrorType = "not_found"
)

// ErrScript matches every *ScriptError with errors.Is.
var ErrScript = errors.New("script error")

// Script is the source of a strategy together with where it came from.
type Script struct {
	Name         string
	Content      string
	Source       ScriptSource
	LastModified time.Time
	Checksum     string
}

// SecurityLimits defines resource constraints for script execution
type SecurityLimits struct {
	MaxExecutionTime time.Duration
	MaxAllocs        int64
	AllowedPackages  []string
}

// ScriptError represents script-related errors with context
type ScriptError struct {
	Type       ErrorType
	ScriptName string
	Message    string
	Cause      error
	Timestamp  time.Time
}

func (e *ScriptError) Error() string {
	if e.Cause != nil {
		return e.ScriptName + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.ScriptName + ": " + e.Message
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}

func (e *ScriptError) Is(target error) bool {
	return target == ErrScript
}

// NewScriptError creates a new ScriptError with the given parameters
func NewScriptError(errorType ErrorType, scriptName, message string, cause error) *ScriptError {
	return &ScriptError{
		Type:       errorType,
		ScriptName: scriptName,
		Message:    message,
		Cause:      cause,
		Timestamp:  time.Now(),
	}
}
