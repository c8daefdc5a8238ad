package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the bursts of events editors produce on save.
const watchDebounce = 200 * time.Millisecond

// watchRender renders inputs once and then again whenever one of them
// changes, until ctx is cancelled. Render failures are reported and the
// watch continues.
//
// Parent directories are watched rather than the files, so inputs
// replaced through a rename (as most editors save) keep being tracked.
func (c *CLI) watchRender(ctx context.Context, inputs []string, job renderJob) error {
	logger := loggerFromContext(ctx)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	watched := make(map[string]string, len(inputs))
	dirs := make(map[string]bool)
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", input, err)
		}
		watched[abs] = input

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	if err := c.runRender(ctx, inputs, job); err != nil {
		printWarning("%v", err)
	}
	printNewline()
	printInfo("Watching %d input(s) for changes (Ctrl+C to stop)", len(inputs))

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Debug("watcher stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			input, ok := watched[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			logger.Debug("input changed", "path", input, "op", ev.Op.String())
			pending[input] = true
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			timerC = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)

		case <-timerC:
			timerC = nil
			batch := make([]string, 0, len(pending))
			for input := range pending {
				batch = append(batch, input)
			}
			sort.Strings(batch)
			clear(pending)

			if err := c.runRender(ctx, batch, job); err != nil {
				printWarning("%v", err)
			}
		}
	}
}
