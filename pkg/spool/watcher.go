package spool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/events"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/identity"
)

const (
	DoneSuffix   = ".done"
	FailedSuffix = ".failed"
	TempSuffix   = ".tmp"
)

var eventExtensions = map[string]bool{
	".yml":  true,
	".yaml": true,
	".json": true,
}

// Watcher raises the events found in a spool directory
type Watcher struct {
	dir    string
	raiser events.Raiser
	logger *zap.Logger
}

// NewWatcher creates a watcher for dir. A nil logger discards output.
func NewWatcher(dir string, raiser events.Raiser, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{dir: dir, raiser: raiser, logger: logger.With(zap.String("spool", dir))}
}

// Dir returns the watched directory
func (w *Watcher) Dir() string {
	return w.dir
}

// Eligible reports whether a file name looks like a finished event file
func Eligible(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if strings.HasSuffix(base, TempSuffix) || strings.HasSuffix(base, DoneSuffix) || strings.HasSuffix(base, FailedSuffix) {
		return false
	}
	return eventExtensions[strings.ToLower(filepath.Ext(base))]
}

// Run processes the files already in the directory, then every file created
// afterwards, until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch before the initial scan so nothing created in between is missed
	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", w.dir, err)
	}

	if err := w.ProcessExisting(ctx); err != nil {
		return err
	}

	w.logger.Info("watching spool directory")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) || !Eligible(event.Name) {
				continue
			}
			// Failures are logged and the file renamed; the watch goes on
			_ = w.ProcessFile(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// ProcessExisting processes eligible files already in the directory, in name
// order. Failed files do not stop the scan.
func (w *Watcher) ProcessExisting(ctx context.Context) error {
	dirEntries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to read spool directory %s: %w", w.dir, err)
	}

	var names []string
	for _, e := range dirEntries {
		if e.Type().IsRegular() && Eligible(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if ctx.Err() != nil {
			return nil
		}
		_ = w.ProcessFile(ctx, filepath.Join(w.dir, name))
	}
	return nil
}

// ProcessFile raises the event in one file and renames it with the outcome
func (w *Watcher) ProcessFile(ctx context.Context, path string) error {
	log := w.logger.With(zap.String("file", filepath.Base(path)))

	err := w.raiseFile(ctx, path)
	suffix := DoneSuffix
	if err != nil {
		suffix = FailedSuffix
		log.Error("failed to process event file", zap.Error(err))
	} else {
		log.Info("event file processed")
	}

	if renameErr := os.Rename(path, path+suffix); renameErr != nil {
		log.Error("failed to rename event file", zap.Error(renameErr))
		return errors.Join(err, renameErr)
	}
	return err
}

func (w *Watcher) raiseFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open event file: %w", err)
	}
	defer func() { _ = f.Close() }()

	env, payload, err := events.ReadEnvelope(f)
	if err != nil {
		return err
	}

	ctx = EnvelopeContext(ctx, env)
	return w.raiser.Raise(ctx, env.Kind, payload)
}

// EnvelopeContext carries the envelope's principal and caller address on
// ctx. An envelope without a principal raises as the system.
func EnvelopeContext(ctx context.Context, env *events.Envelope) context.Context {
	if env.Principal != nil {
		ctx = identity.Set(ctx, identity.ForUser(*env.Principal))
	}
	if env.RemoteAddr != "" {
		ctx = identity.SetRemoteAddr(ctx, env.RemoteAddr)
	}
	return ctx
}
