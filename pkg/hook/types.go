// Package hook runs user-supplied Tengo scripts around the download
// lifecycle. Scripts can inspect the access point being used and veto or
// react to a transfer.
package hook

// Type identifies a point in the download lifecycle.
type Type string

// Supported hook types.
const (
	PreDownload    Type = "pre-download"
	PostDownload   Type = "post-download"
	DownloadFailed Type = "download-failed"
)

// Hook is a script bound to a lifecycle point.
type Hook struct {
	Type    Type
	Content string
}

// Context carries the download state passed to a script.
type Context struct {
	// Provider and ID identify the access point serving the row.
	Provider string
	ID       string
	// Source is the provider the batch was requested from.
	Source string
	// Row is the product row index.
	Row int
	// LocalPath is the downloaded file (post-download only).
	LocalPath string
	// Vars are additional free-form script variables.
	Vars map[string]interface{}
}

// Manager manages and executes lifecycle hooks.
type Manager interface {
	// Execute runs the hook for the given lifecycle point, if one is set.
	Execute(hookType Type, ctx Context) error

	// AddHook registers a script for a lifecycle point.
	AddHook(hook Hook) error

	// RemoveHook drops the script for a lifecycle point.
	RemoveHook(hookType Type) error

	// HasHook reports whether a script is set for a lifecycle point.
	HasHook(hookType Type) bool
}
