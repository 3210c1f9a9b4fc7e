package hook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyarchive/voaccess/pkg/errors"
)

func TestAddAndExecuteHook(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.AddHook(Hook{
		Type:    PreDownload,
		Content: `ok := provider + "/" + pointID`,
	}))
	assert.True(t, m.HasHook(PreDownload))
	assert.False(t, m.HasHook(PostDownload))

	err := m.Execute(PreDownload, Context{Provider: "aws", ID: "s3://survey/a.fits", Row: 0})
	require.NoError(t, err)
}

func TestExecuteWithoutHookIsNoop(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Execute(PostDownload, Context{}))
}

func TestAddHookEmptyType(t *testing.T) {
	m := NewManager()
	err := m.AddHook(Hook{Content: "x := 1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrHookTypeEmpty)
}

func TestRemoveHook(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddHook(Hook{Type: DownloadFailed, Content: "x := 1"}))
	require.NoError(t, m.RemoveHook(DownloadFailed))
	assert.False(t, m.HasHook(DownloadFailed))
}

func TestScriptError(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddHook(Hook{
		Type:    PreDownload,
		Content: `err := "refusing to download from " + provider`,
	}))

	err := m.Execute(PreDownload, Context{Provider: "aws"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrHookScript)
	assert.Contains(t, err.Error(), "refusing to download from aws")
}

func TestScriptCompileFailure(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddHook(Hook{Type: PreDownload, Content: `this is not tengo(`}))

	err := m.Execute(PreDownload, Context{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrHookExecution)
}

func TestScriptSeesContextVars(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddHook(Hook{
		Type:    PostDownload,
		Content: `err := ""; if localPath == "" { err = "no local path" }`,
	}))

	require.NoError(t, m.Execute(PostDownload, Context{LocalPath: "/data/a.fits"}))

	err := m.Execute(PostDownload, Context{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no local path")
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	script := []byte(`x := row`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pre-download.tengo"), script, 0o640))

	m := NewManager()
	require.NoError(t, m.LoadFromDir(dir))
	assert.True(t, m.HasHook(PreDownload))
	assert.False(t, m.HasHook(PostDownload))
}

func TestLoadFromMissingDir(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.LoadFromDir(filepath.Join(t.TempDir(), "nope")))
	assert.False(t, m.HasHook(PreDownload))
}
