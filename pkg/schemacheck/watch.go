package schemacheck

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"

	"go.jetpack.io/mlpad/pkg/padlog"
)

// Watch calls onChange every time files under the root change, at most
// once per debounce window, until ctx is done. It watches the real
// filesystem regardless of the Fs the validator reads from.
func (v *Validator) Watch(ctx context.Context, debounceWindow time.Duration, onChange func()) error {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create, watcher.Remove, watcher.Rename, watcher.Move)
	w.IgnoreHiddenFiles(true)

	if err := w.AddRecursive(v.root); err != nil {
		return errors.Wrapf(err, "failed to watch %s", v.root)
	}
	for p := range w.WatchedFiles() {
		rel, err := filepath.Rel(v.root, p)
		if err != nil || rel == "." || !v.Ignored(rel) {
			continue
		}
		if err := w.Ignore(p); err != nil {
			padlog.Logger(ctx).Printf("[ERROR]: file watcher failed to ignore file: %s\n", p)
		}
	}

	go func() {
		if err := w.Start(time.Second); err != nil {
			padlog.Logger(ctx).Printf("ERROR: unable to start file watcher: %v\n", err)
		}
	}()
	defer w.Close()

	debounced := debounce.New(debounceWindow)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Error:
			padlog.Logger(ctx).Printf("ERROR: file watcher errored with: %v\n", err)
		case <-w.Event:
			debounced(onChange)
		case <-w.Closed:
			return nil
		}
	}
}
