package errors

import "fmt"

// Common error types.
var (
	// Provider and access point errors.
	ErrUnsupportedProvider = fmt.Errorf("provider is not supported")
	ErrProviderNotFound    = fmt.Errorf("no access points registered for provider")
	ErrNotAccessPoint      = fmt.Errorf("value does not implement the access point capability")
	ErrInvalidAccessSpec   = fmt.Errorf("invalid access point specification")
	ErrNoAccessiblePoint   = fmt.Errorf("no accessible access point")

	// Data product errors.
	ErrInvalidProduct  = fmt.Errorf("invalid data product")
	ErrColumnNotFound  = fmt.Errorf("column not found in data product")
	ErrNoURLColumn     = fmt.Errorf("could not resolve the direct access url column")
	ErrProductParse    = fmt.Errorf("failed to parse data product document")
	ErrProductVersion  = fmt.Errorf("unsupported data product format version")
	ErrMalformedAccess = fmt.Errorf("malformed cloud access entry")

	// Download errors.
	ErrDownloadFailed = fmt.Errorf("download failed")
	ErrInvalidPath    = fmt.Errorf("invalid path")

	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to replace config file")

	// Archive errors.
	ErrExtractionFailed = fmt.Errorf("archive extraction failed")

	// Hook errors.
	ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
