package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hesusruiz/paperview/bibtex"
	"github.com/hesusruiz/paperview/citation"
	"github.com/hesusruiz/paperview/config"
	"github.com/hesusruiz/paperview/page"
	"github.com/hesusruiz/paperview/render"
	"github.com/hesusruiz/paperview/server"
	"github.com/hesusruiz/paperview/source"
)

// newLogger sets up the logging system
func newLogger(debug bool) *zap.SugaredLogger {
	var z *zap.Logger
	var err error

	if debug {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}

	return z.Sugar()
}

// loadConfig reads the environment, then the config file and finally the
// flags given in the command line.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if fileName := c.String("config"); len(fileName) > 0 {
		if err := cfg.ApplyFile(fileName); err != nil {
			return nil, err
		}
	}

	override := func(flag string, value *string) {
		if c.IsSet(flag) {
			*value = c.String(flag)
		}
	}
	override("paper", &cfg.Paper)
	override("bib", &cfg.Bibliography)
	override("renderer", &cfg.Renderer)
	override("template", &cfg.Template)
	override("source", &cfg.SourceBase)
	override("addr", &cfg.Addr)

	return cfg, nil
}

// newPage creates a page from the template file, or the built in one
func newPage(cfg *config.Config) (*page.Page, error) {
	var p *page.Page
	if len(cfg.Template) == 0 {
		p = page.New()
	} else {
		f, err := os.Open(cfg.Template)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		p, err = page.NewFromTemplate(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Template, err)
		}
	}

	p.SetTitle(cfg.Title)
	return p, nil
}

// renderOnce renders the paper and writes the page to outputFileName.
// The page is written even when the paper could not be rendered, since it
// then shows the error.
func renderOnce(ctx context.Context, cfg *config.Config, fetcher source.Fetcher, selector *render.Selector, outputFileName string, dryrun bool) error {
	p, err := newPage(cfg)
	if err != nil {
		return err
	}

	_, loadErr := selector.Load(ctx, p, render.LoadOptions{
		Source:       fetcher,
		Paper:        cfg.Paper,
		Bibliography: cfg.Bibliography,
		Mode:         render.ParseMode(cfg.Renderer),
		Timeout:      cfg.FetchTimeout,
	})

	// Do nothing if flag dryrun was specified
	if dryrun {
		return loadErr
	}

	out, err := p.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputFileName, out, 0664); err != nil {
		return err
	}

	return loadErr
}

// modTime is the latest modification time of the paper and its bibliography
func modTime(dir source.Dir, cfg *config.Config) int64 {
	var latest int64
	for _, name := range []string{cfg.Paper, cfg.Bibliography} {
		if t, err := dir.ModTime(name); err == nil && t > latest {
			latest = t
		}
	}
	return latest
}

// newWatchScheduler returns a scheduler that skips a run while the previous
// one is still rendering.
func newWatchScheduler() *cron.Cron {
	return cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
}

// processWatch checks every second if the paper or the bibliography have been
// modified, and if so renders the paper again. It runs until interrupted.
func processWatch(ctx context.Context, cfg *config.Config, dir source.Dir, selector *render.Selector, outputFileName string, sugar *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var last int64

	scheduler := newWatchScheduler()
	_, err := scheduler.AddFunc("@every 1s", func() {
		current := modTime(dir, cfg)
		if current <= last {
			return
		}
		last = current

		sugar.Infow("processing", "paper", cfg.Paper, "output", outputFileName)
		if err := renderOnce(ctx, cfg, dir, selector, outputFileName, false); err != nil {
			sugar.Errorw("render failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()

	return nil
}

// outputName replaces the extension of the input file by .html
func outputName(inputFileName string) string {
	ext := path.Ext(inputFileName)
	if len(ext) == 0 {
		return inputFileName + ".html"
	}
	return strings.TrimSuffix(inputFileName, ext) + ".html"
}

// process renders the paper to an HTML file
func process(c *cli.Context) error {
	sugar := newLogger(c.Bool("debug"))
	defer sugar.Sync()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	fetcher, err := cfg.Fetcher(c.Context)
	if err != nil {
		return err
	}

	selector := render.NewSelector(cfg.CodeStyle, sugar)
	selector.AssetBase = cfg.LaTeXAssetBase

	outputFileName := c.String("output")
	if len(outputFileName) == 0 {
		outputFileName = outputName(path.Base(cfg.Paper))
	}

	dryrun := c.Bool("dryrun")
	if !dryrun {
		fmt.Printf("processing %v and generating %v\n", cfg.Paper, outputFileName)
	} else {
		fmt.Printf("dry run: processing %v without writing output\n", cfg.Paper)
	}

	// If the user specified to watch, render again whenever the sources change
	if c.Bool("watch") {
		dir, ok := fetcher.(source.Dir)
		if !ok {
			return fmt.Errorf("watch needs a %s source, not %s", config.SourceDir, cfg.SourceKind)
		}
		return processWatch(c.Context, cfg, dir, selector, outputFileName, sugar)
	}

	return renderOnce(c.Context, cfg, fetcher, selector, outputFileName, dryrun)
}

// serve runs the HTTP server
func serve(c *cli.Context) error {
	sugar := newLogger(c.Bool("debug"))
	defer sugar.Sync()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	fetcher, err := cfg.Fetcher(c.Context)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, fetcher, sugar)
	if err != nil {
		return err
	}

	return srv.Run()
}

// listReferences prints the numbered references of the paper, or the whole
// bibliography when no paper is given.
func listReferences(c *cli.Context) error {
	sugar := newLogger(c.Bool("debug"))
	defer sugar.Sync()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	fetcher, err := cfg.Fetcher(c.Context)
	if err != nil {
		return err
	}

	var resolved []citation.Resolved

	if c.IsSet("paper") {
		selector := render.NewSelector(cfg.CodeStyle, sugar)
		resolved, err = selector.LoadReferences(c.Context, render.LoadOptions{
			Source:       fetcher,
			Paper:        cfg.Paper,
			Bibliography: cfg.Bibliography,
			Timeout:      cfg.FetchTimeout,
		})
	} else {
		resolved, err = allReferences(c.Context, fetcher, cfg)
	}
	if err != nil {
		return err
	}

	for _, r := range resolved {
		fmt.Fprintln(c.App.Writer, render.FormatText(r))
	}
	return nil
}

func allReferences(ctx context.Context, fetcher source.Fetcher, cfg *config.Config) ([]citation.Resolved, error) {
	if cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
		defer cancel()
	}

	bib, err := fetcher.Fetch(ctx, cfg.Bibliography)
	if err != nil {
		return nil, err
	}
	return render.References(bibtex.Parse(bib), nil), nil
}

var commonFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "config",
		Usage: "read settings from the YAML `FILE`",
	},
	&cli.StringFlag{
		Name:  "source",
		Usage: "read the paper from `DIR` or from the base URL of the configured source",
	},
	&cli.StringFlag{
		Name:  "paper",
		Usage: "name of the LaTeX `FILE` of the paper (default core.tex)",
	},
	&cli.StringFlag{
		Name:  "bib",
		Usage: "name of the BibTeX `FILE` (default refs.bib)",
	},
	&cli.BoolFlag{
		Name:    "debug",
		Aliases: []string{"d"},
		Usage:   "run in debug mode",
	},
}

var renderFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "write html to `FILE` (default is paper file name with extension .html)",
	},
	&cli.StringFlag{
		Name:  "renderer",
		Usage: "auto, or latexjs to skip the Markdown renderer",
	},
	&cli.StringFlag{
		Name:  "template",
		Usage: "use the page template in `FILE`",
	},
	&cli.BoolFlag{
		Name:    "dryrun",
		Aliases: []string{"n"},
		Usage:   "do not generate output file, just process the paper",
	},
	&cli.BoolFlag{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "watch the paper and the bibliography for changes",
	},
}, commonFlags...)

var serveFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:  "addr",
		Usage: "listen on `ADDR` (default :4242)",
	},
	&cli.StringFlag{
		Name:  "renderer",
		Usage: "default renderer, overridden by the renderer query parameter",
	},
	&cli.StringFlag{
		Name:  "template",
		Usage: "use the page template in `FILE`",
	},
}, commonFlags...)

func main() {

	app := &cli.App{
		Name:     "paperview",
		Version:  "v0.1.0",
		Compiled: time.Now(),
		Authors: []*cli.Author{
			{
				Name:  "Jesus Ruiz",
				Email: "hesus.ruiz@gmail.com",
			},
		},
		Usage:     "render a LaTeX paper and its bibliography as HTML",
		UsageText: "paperview [command] [options]",
		Action:    process,
		Flags:     renderFlags,
		Commands: []*cli.Command{
			{
				Name:   "render",
				Usage:  "render the paper to an HTML file",
				Action: process,
				Flags:  renderFlags,
			},
			{
				Name:   "serve",
				Usage:  "serve the rendered paper over HTTP",
				Action: serve,
				Flags:  serveFlags,
			},
			{
				Name:   "bib",
				Usage:  "print the numbered references",
				Action: listReferences,
				Flags:  commonFlags,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

}
