package mimekit

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"

	"github.com/gobeaver/mimekit/loader"
)

// Watch returns a token that fires once when a definition file behind the
// database is created, written, removed or renamed. Databases never reload
// themselves; build a new one when the token fires. The watch ends when ctx
// is done or the token fires. A database without file sources returns a
// NeverChangeToken.
func (db *Database) Watch(ctx context.Context) (ChangeToken, error) {
	db.ensureLoaded()
	dirs := db.watchDirs()
	if len(dirs) == 0 {
		return NeverChangeToken{}, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}

	token := NewCallbackChangeToken()
	log := db.log.With().Str("component", "watcher").Logger()
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !loader.IsDefinitionFile(event.Name) || event.Op == fsnotify.Chmod {
					continue
				}
				log.Info().Str("source", event.Name).Str("op", event.Op.String()).Msg("definitions changed")
				token.SignalChange()
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("watching definitions")
			}
		}
	}()
	return token, nil
}

// watchDirs lists the directories holding the database's definition files.
func (db *Database) watchDirs() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	dirs := slices.Clone(db.dirs)
	for _, src := range db.sources {
		if fs, ok := src.(*loader.FileSource); ok {
			dirs = append(dirs, filepath.Dir(fs.Path()))
		}
	}
	if db.system {
		found, _ := loader.SystemSources()
		for _, src := range found {
			if fs, ok := src.(*loader.FileSource); ok {
				dirs = append(dirs, filepath.Dir(fs.Path()))
			}
		}
	}
	for i, d := range dirs {
		dirs[i] = filepath.Clean(d)
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}
