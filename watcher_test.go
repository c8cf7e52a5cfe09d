package mimekit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const widgetDefinitions = `<mime-info><mime-type type="application/x-widget"><glob pattern="*.widget"/></mime-type></mime-info>`

func TestWatchWithoutFilesNeverChanges(t *testing.T) {
	db := New()
	token, err := db.Watch(context.Background())
	require.NoError(t, err)
	assert.IsType(t, NeverChangeToken{}, token)
}

func TestWatchSignalsDefinitionChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.xml"), []byte(widgetDefinitions), 0o644))

	db := New(WithDefinitionDirs(dir))
	require.NoError(t, db.EnsureLoaded())
	assert.Equal(t, "application/x-widget", db.TypeForFileName("a.widget").Name())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	token, err := db.Watch(ctx)
	require.NoError(t, err)

	fired := make(chan struct{})
	token.RegisterChangeCallback(func() { close(fired) })

	// Unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.False(t, token.HasChanged())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "gadget.xml"), []byte(widgetDefinitions), 0o644))
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("change token did not fire")
	}
	assert.True(t, token.HasChanged())

	// The database itself does not reload
	assert.Equal(t, StateReady, db.State())
}

func TestWatchDirs(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sub", "defs.xml")

	db := New(WithDefinitionDirs(dir, dir+"/"), WithDefinitionFiles(file))
	db.EnsureLoaded()

	assert.Equal(t, []string{dir, filepath.Join(dir, "sub")}, db.watchDirs())
}
