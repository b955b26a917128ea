package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sandrolain/gorule/pkg/types"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A rule was invalid or failed to evaluate
	ExitCommandError = 2 // Command error (unreadable files, bad flags)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code       string `json:"code"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NewCLIError describes err. Engine errors keep their code, kind and
// location; other errors get code "E000".
func NewCLIError(err error) *CLIError {
	var terr *types.Error
	if !errors.As(err, &terr) {
		return &CLIError{Code: "E000", Kind: "Error", Message: err.Error()}
	}
	return &CLIError{
		Code:       string(terr.Code),
		Kind:       terr.Kind(),
		Message:    terr.Message,
		Line:       terr.Line,
		Column:     terr.Column,
		Suggestion: terr.Details.Suggestion,
	}
}

// Success outputs a successful result in the configured format. In text
// format data is printed with fmt.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(err error) error {
	cerr := NewCLIError(err)
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  cerr,
		})
	}
	_, werr := fmt.Fprintf(f.Writer, "Error [%s]: %v\n", cerr.Kind, err)
	return werr
}
