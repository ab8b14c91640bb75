package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Henka-Programmer/Marin/internal/catalog"
	"github.com/Henka-Programmer/Marin/internal/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Domain rejected (syntax, unknown column, bad value)
	ExitCommandError = 2 // Command error (bad flags, unreadable files, config)
)

// Error codes for CLI output
const (
	// General errors (E0xx)
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeUsage       = "E002" // Invalid flags or arguments
	ErrCodeConfig      = "E003" // Config could not be loaded
	ErrCodeReadFailed  = "E004" // Input file could not be read
	ErrCodeNotFound    = "E005" // Model or file not found
	ErrCodeCatalog     = "E006" // Catalog file invalid
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeDatabase    = "E008" // Database could not be opened or read

	// Domain errors (E1xx)
	ErrCodeDomainSyntax          = "E101"
	ErrCodeInvalidLeaf           = "E102"
	ErrCodeUnknownColumn         = "E103"
	ErrCodeUnsupportedNavigation = "E104"
	ErrCodeUnsupportedComparison = "E105"
	ErrCodeUnsupportedOperator   = "E106"
	ErrCodeInvalidValue          = "E107"
)

var domainErrorCodes = map[domain.ErrorCode]string{
	domain.ErrCodeDomainSyntax:          ErrCodeDomainSyntax,
	domain.ErrCodeInvalidLeaf:           ErrCodeInvalidLeaf,
	domain.ErrCodeUnknownColumn:         ErrCodeUnknownColumn,
	domain.ErrCodeUnsupportedNavigation: ErrCodeUnsupportedNavigation,
	domain.ErrCodeUnsupportedComparison: ErrCodeUnsupportedComparison,
	domain.ErrCodeUnsupportedOperator:   ErrCodeUnsupportedOperator,
	domain.ErrCodeInvalidValue:          ErrCodeInvalidValue,
}

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
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
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// reportError prints err with code and returns the matching ExitError.
// Coded domain errors override code and exit with ExitFailure.
func reportError(f *OutputFormatter, code, message string, err error) error {
	exit := ExitCommandError
	var details any

	var domErr *domain.Error
	var loadErr *catalog.LoadError
	switch {
	case errors.As(err, &domErr):
		code = domainErrorCodes[domErr.Code]
		exit = ExitFailure
		if domErr.Token != "" {
			details = map[string]string{"token": domErr.Token}
		}
	case errors.As(err, &loadErr) && loadErr.Pos.IsValid():
		details = map[string]any{
			"file":   loadErr.Pos.Filename(),
			"line":   loadErr.Pos.Line(),
			"column": loadErr.Pos.Column(),
		}
	case errors.Is(err, catalog.ErrModelNotFound):
		code = ErrCodeNotFound
	}
	if code == "" {
		code = ErrCodeGeneric
	}

	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, text, details)
	return WrapExitError(exit, message, err)
}
