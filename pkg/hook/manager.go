package hook

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/skyarchive/voaccess/pkg/errors"
)

// DefaultManager is the default implementation of Manager.
type DefaultManager struct {
	executor *TengoExecutor
	mutex    sync.RWMutex
}

// NewManager creates a new hook manager.
func NewManager() *DefaultManager {
	return &DefaultManager{
		executor: NewTengoExecutor(),
	}
}

// Execute runs the hook for the given lifecycle point, if one is set.
func (m *DefaultManager) Execute(hookType Type, ctx Context) error {
	if !m.HasHook(hookType) {
		return nil
	}

	// copy so scripts cannot mutate the caller's context
	ctxCopy := ctx
	if ctxCopy.Vars == nil {
		ctxCopy.Vars = make(map[string]interface{})
	}
	return m.executor.Execute(hookType, ctxCopy)
}

// AddHook registers a script for a lifecycle point.
func (m *DefaultManager) AddHook(hook Hook) error {
	if hook.Type == "" {
		return errors.ErrHookTypeEmpty
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.executor.AddScript(hook.Type, hook.Content)
	return nil
}

// RemoveHook drops the script for a lifecycle point.
func (m *DefaultManager) RemoveHook(hookType Type) error {
	if hookType == "" {
		return errors.ErrHookTypeEmpty
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.executor.RemoveScript(hookType)
	return nil
}

// HasHook reports whether a script is set for a lifecycle point.
func (m *DefaultManager) HasHook(hookType Type) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.executor.HasScript(hookType)
}

// LoadFromDir registers every "<type>.tengo" script found in dir. A missing
// directory is not an error; nothing gets registered.
func (m *DefaultManager) LoadFromDir(dir string) error {
	for _, hookType := range []Type{PreDownload, PostDownload, DownloadFailed} {
		path := filepath.Join(dir, string(hookType)+".tengo")
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, "failed to load hook script %s", path)
		}
		if err := m.AddHook(Hook{Type: hookType, Content: string(content)}); err != nil {
			return err
		}
	}
	return nil
}
