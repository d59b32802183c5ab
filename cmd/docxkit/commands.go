package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/data"
)

const version = "0.1.0"

const usageText = `docxkit renders {{placeholders}} in Word documents.

Commands:
  render   render a template with data
  inspect  list the placeholders of a template
  diff     compare the text of two documents
  watch    re-render whenever the template or its data change
  version  print the version`

// RootCommand returns the docxkit command and its subcommands.
func RootCommand() *cli.Command {
	return cli.NewCommand("docxkit").
		WithSynopsis("docxkit command [opts] args").
		WithDescription(usageText).
		WithSubs(
			RenderCommand(),
			InspectCommand(),
			DiffCommand(),
			WatchCommand(),
			VersionCommand(),
		)
}

// renderFlags are the options shared by render and watch.
type renderFlags struct {
	sources data.Sources
}

func appendTo(dst *[]string) cli.FuncOpt {
	return func(_ *cli.Context, a string) (any, error) {
		*dst = append(*dst, a)
		return nil, nil
	}
}

func (f *renderFlags) opts() []*cli.Opt {
	s := &f.sources
	return []*cli.Opt{
		{
			Name:        "data",
			Aliases:     []string{"d"},
			Description: "JSON or YAML data file, merged in order",
			Type:        cli.NamedFuncOpt(appendTo(&s.Files), "(file)"),
		},
		{
			Name:        "set",
			Aliases:     []string{"s"},
			Description: "set a value, e.g. -set customer.name=Ada",
			Type:        cli.NamedFuncOpt(appendTo(&s.Sets), "(key=value)"),
		},
		{
			Name:        "patch",
			Description: "JSON merge patch or RFC 6902 patch file applied to the data",
			Type:        cli.NamedFuncOpt(appendTo(&s.Patches), "(file)"),
		},
		{
			Name:        "table",
			Description: "expose the result of a query on -db as a table",
			Type:        cli.NamedFuncOpt(appendTo(&s.Tables), "(name=query)"),
		},
		{
			Name:        "notebook",
			Description: "expose a Jupyter notebook for the jupyter helper",
			Type:        cli.NamedFuncOpt(appendTo(&s.Notebooks), "(name=file)"),
		},
	}
}

type renderConfig struct {
	*cli.Command
	flags renderFlags

	Out      string `cli:"name=o desc='output file, - for stdout'"`
	Database string `cli:"name=db desc='SQLite database queried by -table'"`
	Missing  string `cli:"name=missing desc='error or empty: how tags without data are rendered'"`
	Config   string `cli:"name=config desc='YAML configuration file'"`
	Verbose  bool   `cli:"name=v desc='log every placeholder'"`
}

func (cfg *renderConfig) engineOptions() engineOptions {
	return engineOptions{configFile: cfg.Config, missing: cfg.Missing, verbose: cfg.Verbose}
}

// RenderCommand returns the render subcommand.
func RenderCommand() *cli.Command {
	cfg := &renderConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, cfg.flags.opts()...)
	return cli.NewCommandAt(&cfg.Command, "render").
		WithAliases("r").
		WithSynopsis("render [-data f]... [-set k=v]... [-patch f]... [-db f -table name=query]... [-notebook name=f]... -o out.docx in.docx").
		WithDescription("render a template with data").
		WithOpts(opts...).
		WithRun(cfg.run)
}

type watchConfig struct {
	renderConfig
}

// WatchCommand returns the watch subcommand.
func WatchCommand() *cli.Command {
	cfg := &watchConfig{}
	opts, err := cli.StructOpts(&cfg.renderConfig)
	if err != nil {
		panic(err)
	}
	opts = append(opts, cfg.flags.opts()...)
	return cli.NewCommandAt(&cfg.Command, "watch").
		WithAliases("w").
		WithSynopsis("watch [render opts] -o out.docx in.docx").
		WithDescription("render, then render again whenever the template or a data file changes").
		WithOpts(opts...).
		WithRun(cfg.run)
}

type inspectConfig struct {
	*cli.Command
}

// InspectCommand returns the inspect subcommand.
func InspectCommand() *cli.Command {
	cfg := &inspectConfig{}
	return cli.NewCommandAt(&cfg.Command, "inspect").
		WithAliases("i").
		WithSynopsis("inspect in.docx...").
		WithDescription("list the placeholders of each part and report malformed tags").
		WithRun(cfg.run)
}

type diffConfig struct {
	*cli.Command
	All bool `cli:"name=all aliases=a desc='print unchanged paragraphs too'"`
}

// DiffCommand returns the diff subcommand.
func DiffCommand() *cli.Command {
	cfg := &diffConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "diff").
		WithAliases("d").
		WithSynopsis("diff [-all] a.docx b.docx").
		WithDescription("compare the paragraph text of two documents, exiting 1 when they differ").
		WithOpts(opts...).
		WithRun(cfg.run)
}

// VersionCommand returns the version subcommand.
func VersionCommand() *cli.Command {
	return cli.NewCommand("version").
		WithSynopsis("version").
		WithDescription("print the version").
		WithRun(func(cc *cli.Context, args []string) error {
			fmt.Fprintf(cc.Out, "docxkit %s\n", version)
			return nil
		})
}
