package errors

import (
	"fmt"
	"log/slog"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI use.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if classified, ok := AsClassified(err); ok {
		return a.exitCodeFromClassified(classified)
	}

	// Fallback for unclassified errors
	return 1
}

// exitCodeFromClassified maps ClassifiedError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromClassified(err *ClassifiedError) int {
	switch err.Category() {
	case CategoryValidation, CategoryRecipe:
		return 2 // Invalid usage or recipe
	case CategoryAuth:
		return 5 // Permission/auth error
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryNetwork, CategoryGit:
		return 8 // External system error
	case CategoryNotFound:
		return 9 // Missing resource
	case CategoryInternal:
		return 10 // Internal error
	case CategoryBuild, CategoryInstall, CategoryFileSystem:
		return 11 // Build/install error
	case CategoryDaemon, CategoryRuntime, CategoryHistory:
		return 12 // Runtime error
	default:
		return 1 // General error
	}
}

// Report logs the error at a level matching its severity and returns the exit code.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return 0
	}

	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error(err.Error())
		return 1
	}

	msg := classified.Message()
	if a.verbose && classified.Cause() != nil {
		msg = fmt.Sprintf("%s: %v", msg, classified.Cause())
	}

	attrs := make([]any, 0, len(classified.Context())*2+2)
	attrs = append(attrs, "category", string(classified.Category()))
	for k, v := range classified.Context() {
		attrs = append(attrs, k, v)
	}

	switch classified.Severity() {
	case SeverityWarning:
		a.logger.Warn(msg, attrs...)
	case SeverityInfo:
		a.logger.Info(msg, attrs...)
	default:
		a.logger.Error(msg, attrs...)
	}

	return a.exitCodeFromClassified(classified)
}
