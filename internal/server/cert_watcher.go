package server

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"profilelens/internal/errors"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounceDelay = time.Second

// fileStamp identifies one version of a file on disk
type fileStamp struct {
	modTime time.Time
	size    int64
}

// CertWatcher calls onChange once a burst of filesystem events on the
// watched files has settled for debounceDelay and at least one file's
// content actually differs from the last seen version.
type CertWatcher struct {
	files         []string
	debounceDelay time.Duration
	onChange      func()
	logger        *errors.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	done    chan struct{}
	stopped chan struct{}
	stamps  map[string]fileStamp
}

// NewCertWatcher creates a watcher for files. Empty and repeated paths are
// dropped; a non-positive delay falls back to one second.
func NewCertWatcher(files []string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) *CertWatcher {
	if debounceDelay <= 0 {
		debounceDelay = defaultDebounceDelay
	}

	var unique []string
	for _, f := range files {
		if f != "" && !slices.Contains(unique, f) {
			unique = append(unique, f)
		}
	}

	return &CertWatcher{
		files:         unique,
		debounceDelay: debounceDelay,
		onChange:      onChange,
		logger:        logger,
	}
}

// Start snapshots the files and begins watching them together with their
// directories, so replacement by rename is seen too
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.fsw != nil {
		return stderrors.New("certificate watcher is already running")
	}

	stamps, err := stampFiles(cw.files)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dirs := map[string]bool{}
	for _, f := range cw.files {
		// A missing file is picked up through its directory once created
		if err := fsw.Add(f); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			cw.logger.Warn("Failed to watch certificate file", "file", f, "error", err)
		}
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			cw.logger.Warn("Failed to watch certificate directory", "directory", dir, "error", err)
		}
	}

	cw.fsw = fsw
	cw.stamps = stamps
	cw.done = make(chan struct{})
	cw.stopped = make(chan struct{})
	go cw.run(fsw, cw.done, cw.stopped)

	cw.logger.Info("Certificate file watcher started",
		"files", cw.files,
		"debounce_delay", cw.debounceDelay)
	return nil
}

// Stop ends watching and waits for the event loop to exit. Stopping a
// watcher that is not running is a no-op.
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	fsw, done, stopped := cw.fsw, cw.done, cw.stopped
	cw.fsw = nil
	cw.mu.Unlock()

	if fsw == nil {
		return nil
	}

	close(done)
	<-stopped
	if err := fsw.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}

	cw.logger.Info("Certificate file watcher stopped")
	return nil
}

// IsRunning reports whether Start has been called without a matching Stop
func (cw *CertWatcher) IsRunning() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.fsw != nil
}

// GetWatchedFiles returns a copy of the watched paths
func (cw *CertWatcher) GetWatchedFiles() []string {
	return slices.Clone(cw.files)
}

func (cw *CertWatcher) run(fsw *fsnotify.Watcher, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	debounce := time.NewTimer(cw.debounceDelay)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-done:
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if cw.relevant(event) {
				debounce.Reset(cw.debounceDelay)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			cw.logger.LogError(err, "File watcher error")

		case <-debounce.C:
			if cw.refreshStamps() {
				cw.logger.Info("Certificate files changed, triggering reload")
				cw.onChange()
			}
		}
	}
}

// relevant matches write, create and rename events on a watched file name
func (cw *CertWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return slices.ContainsFunc(cw.files, func(f string) bool {
		return event.Name == f || filepath.Base(event.Name) == filepath.Base(f)
	})
}

// refreshStamps re-reads every file and reports whether any differs from
// the previous snapshot, including a file that disappeared
func (cw *CertWatcher) refreshStamps() bool {
	current, err := stampFiles(cw.files)
	if err != nil {
		cw.logger.LogError(err, "Failed to inspect certificate files")
		return false
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()

	changed := len(current) != len(cw.stamps)
	for f, stamp := range current {
		if prev, ok := cw.stamps[f]; !ok || prev != stamp {
			changed = true
		}
	}
	cw.stamps = current
	return changed
}

// stampFiles records the version of each existing file. Missing files are
// left out rather than treated as errors.
func stampFiles(files []string) (map[string]fileStamp, error) {
	stamps := make(map[string]fileStamp, len(files))
	for _, f := range files {
		info, err := os.Stat(f)
		switch {
		case stderrors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return nil, fmt.Errorf("failed to stat file %s: %w", f, err)
		}
		stamps[f] = fileStamp{modTime: info.ModTime(), size: info.Size()}
	}
	return stamps, nil
}
