package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/scott-cotton/cli"
)

// settle is how long watch waits for a burst of writes to end.
const settle = 200 * time.Millisecond

func (cfg *watchConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if err := cfg.checkArgs(args); err != nil {
		return err
	}
	if cfg.Out == "-" {
		return fmt.Errorf("%w: watch needs an output file", cli.ErrUsage)
	}
	engine, err := newEngine(cfg.engineOptions(), os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace files rather than write them, so the watch is on
	// the directories and events are filtered by name.
	inputs := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range append([]string{args[0]}, cfg.flags.sources.Paths()...) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		inputs[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("could not watch %s: %w", dir, err)
		}
	}

	render := func() {
		start := time.Now()
		err := renderFile(ctx, engine, &cfg.flags.sources, args[0], cfg.Out, cc.Out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %s\n", errorColor.Sprint("error:"), err)
			return
		}
		fmt.Fprintf(os.Stderr, "rendered %s in %s\n", cfg.Out, time.Since(start).Round(time.Millisecond))
	}
	render()

	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(event.Name)
			if !inputs[abs] || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "%s %s\n", errorColor.Sprint("watch error:"), err)
		case <-timer.C:
			render()
		}
	}
}
