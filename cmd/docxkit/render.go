package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/scott-cotton/cli"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit"
	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/data"
)

type engineOptions struct {
	configFile string
	missing    string
	verbose    bool
}

// newEngine builds an engine from the environment, an optional config file
// and the command line, in increasing order of precedence.
func newEngine(o engineOptions, logOut io.Writer) (*docxkit.Engine, error) {
	config := docxkit.ConfigFromEnvironment()
	if o.configFile != "" {
		var err error
		if config, err = docxkit.LoadConfigFile(o.configFile, config); err != nil {
			return nil, err
		}
	}
	if o.missing != "" {
		config.MissingValue = o.missing
	}
	if o.verbose {
		config.LogLevel = "debug"
	}
	// Each invocation prepares a template once; watch re-reads it on change.
	config.CacheMaxSize = 0
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", cli.ErrUsage, err)
	}
	logger := docxkit.NewLogger(logOut, docxkit.ParseLogLevel(config.LogLevel))
	return docxkit.NewWithOptions(docxkit.WithConfig(config), docxkit.WithLogger(logger)), nil
}

func (cfg *renderConfig) checkArgs(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected one template, got %d", cli.ErrUsage, len(args))
	}
	if cfg.Out == "" {
		return fmt.Errorf("%w: -o is required", cli.ErrUsage)
	}
	cfg.flags.sources.Database = cfg.Database
	return nil
}

func (cfg *renderConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if err := cfg.checkArgs(args); err != nil {
		return err
	}
	engine, err := newEngine(cfg.engineOptions(), os.Stderr)
	if err != nil {
		return err
	}
	return renderFile(context.Background(), engine, &cfg.flags.sources, args[0], cfg.Out, cc.Out)
}

// renderFile renders in to out. A file output is written next to its final
// name and renamed into place, so a failed render leaves the previous output
// intact.
func renderFile(ctx context.Context, engine *docxkit.Engine, sources *data.Sources, in, out string, stdout io.Writer) error {
	tmpl, err := engine.PrepareFile(in)
	if err != nil {
		return err
	}
	defer tmpl.Close()

	d, err := sources.Build(ctx)
	if err != nil {
		return fmt.Errorf("error loading data: %w", err)
	}

	if out == "-" {
		return tmpl.RenderTo(ctx, stdout, d)
	}
	f, err := os.CreateTemp(filepath.Dir(out), "."+filepath.Base(out)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if err := tmpl.RenderTo(ctx, f, d); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), out)
}
