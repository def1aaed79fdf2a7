package check

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch runs cfg once, then again whenever the request, a type table or a
// Go file in cfg.Dir changes. Directories are watched rather than files so
// editors that save by rename are noticed. Watch blocks until ctx is done.
func Watch(ctx context.Context, cfg Config, onReport func(*Report, error)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create fsnotify: %w", err)
	}
	defer fsw.Close()

	files, dirs, err := watchTargets(cfg)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch: %s: %w", dir, err)
		}
	}
	goDir := ""
	if cfg.Dir != "" {
		if goDir, err = filepath.Abs(cfg.Dir); err != nil {
			return err
		}
	}
	relevant := func(path string) bool {
		path = filepath.Clean(path)
		if files[path] {
			return true
		}
		return goDir != "" && filepath.Dir(path) == goDir && strings.HasSuffix(path, ".go")
	}

	log := cfg.logger()
	onReport(Run(ctx, cfg))

	var rerun <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 && relevant(event.Name) {
				log.Debug("watch: change detected", "path", event.Name, "op", event.Op.String())
				rerun = time.After(cfg.debounce())
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error", "err", err)
		case <-rerun:
			rerun = nil
			log.Info("watch: re-running check")
			onReport(Run(ctx, cfg))
		}
	}
}

func watchTargets(cfg Config) (map[string]bool, []string, error) {
	files := make(map[string]bool)
	var dirs []string
	seenDir := make(map[string]bool)
	addDir := func(dir string) {
		if !seenDir[dir] {
			seenDir[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for _, p := range append([]string{cfg.Request}, cfg.Tables...) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, fmt.Errorf("watch: resolve %s: %w", p, err)
		}
		files[abs] = true
		addDir(filepath.Dir(abs))
	}
	if cfg.Dir != "" {
		abs, err := filepath.Abs(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("watch: resolve %s: %w", cfg.Dir, err)
		}
		addDir(abs)
	}
	return files, dirs, nil
}
