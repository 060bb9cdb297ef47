package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/panbanda/orphan/internal/output"
	"github.com/panbanda/orphan/internal/progress"
	"github.com/panbanda/orphan/internal/remote"
	"github.com/panbanda/orphan/internal/service/analysis"
	"github.com/panbanda/orphan/pkg/config"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "orphan",
		Usage:   "Find obsolete source files and empty directories in web projects",
		Version: version,
		Description: `Orphan builds the import graph of a JavaScript/TypeScript project, walks it
from the framework entry points (Next.js app/ and pages/ by default) and
reports every source file nothing reachable depends on.

Running orphan without a command analyzes the project containing the
given path, or the current directory.`,
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"ORPHAN_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "Directory to start the project root search from (defaults to the path argument)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon, yaml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the import cache",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Hide progress bars",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of files read in parallel (0 = 2x CPUs)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: setupLogging,
		Action: runAnalyzeCmd,
		Commands: []*cli.Command{
			analyzeCmd(),
			cleanCmd(),
			ignoreCmd(),
			emptyDirsCmd(),
			graphCmd(),
			reportCmd(),
			watchCmd(),
			mcpCmd(),
			configCmd(),
			cacheCmd(),
		},
	}
}

// setupLogging installs a text slog handler on stderr.
func setupLogging(c *cli.Context) error {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	errWriter := c.App.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(errWriter, &slog.HandlerOptions{Level: level})))
	return nil
}

// getPath returns the start directory from --root or the first positional
// argument, defaulting to ".".
func getPath(c *cli.Context) string {
	if root := c.String("root"); root != "" {
		return root
	}
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

// loadConfig returns the config named by --config, or nil to let the
// service look it up in the project root.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return nil, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newService builds the analysis service from global flags.
func newService(c *cli.Context) (*analysis.Service, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	opts := []analysis.Option{analysis.WithLogger(slog.Default())}
	if cfg != nil {
		opts = append(opts, analysis.WithConfig(cfg))
	}
	if c.Bool("no-cache") {
		opts = append(opts, analysis.WithNoCache())
	}
	if n := c.Int("workers"); n > 0 {
		opts = append(opts, analysis.WithWorkers(n))
	}
	return analysis.New(opts...), nil
}

// openProject locates the project for the command's path.
func openProject(c *cli.Context) (*analysis.Service, *analysis.Project, error) {
	return openProjectAt(c, getPath(c))
}

// openSource is openProject for read-only commands: a path that names a
// remote repository is cloned first. The returned cleanup removes the clone
// and must always be called.
func openSource(c *cli.Context) (*analysis.Service, *analysis.Project, func(), error) {
	noop := func() {}
	path := getPath(c)

	src, err := remote.Parse(path)
	if err != nil {
		return nil, nil, noop, err
	}
	if src == nil {
		svc, p, err := openProjectAt(c, path)
		return svc, p, noop, err
	}

	var progressOut io.Writer
	if !c.Bool("no-progress") {
		progressOut = stderr(c)
		fmt.Fprintf(progressOut, "Cloning %s...\n", src)
	}
	if err := src.Clone(c.Context, progressOut); err != nil {
		return nil, nil, noop, err
	}
	cloneDir := src.CloneDir
	cleanup := func() {
		if err := src.Cleanup(); err != nil {
			slog.Warn("failed to remove clone", "dir", cloneDir, "error", err)
		}
	}

	svc, p, err := openProjectAt(c, src.CloneDir)
	if err != nil {
		cleanup()
		return nil, nil, noop, err
	}
	return svc, p, cleanup, nil
}

// openProjectAt locates the project containing dir.
func openProjectAt(c *cli.Context, dir string) (*analysis.Service, *analysis.Project, error) {
	svc, err := newService(c)
	if err != nil {
		return nil, nil, err
	}
	start, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid path: %w", err)
	}
	p, err := svc.Open(start)
	if err != nil {
		return nil, nil, err
	}
	return svc, p, nil
}

// newFormatter honors --format and --output, falling back to the project's
// configured output settings.
func newFormatter(c *cli.Context, p *analysis.Project) (*output.Formatter, error) {
	format := c.String("format")
	colored := !color.NoColor
	if p != nil {
		if format == "" {
			format = p.Config.Output.Format
		}
		colored = colored && p.Config.Output.Color
	}

	if path := c.String("output"); path != "" {
		return output.NewFormatter(output.ParseFormat(format), path, false)
	}
	return output.NewWriterFormatter(output.ParseFormat(format), stdout(c), colored), nil
}

// newSpinner creates a progress indicator on stderr unless progress is
// disabled. It turns into a bar once the file count is known.
func newSpinner(c *cli.Context, label string) *progress.Tracker {
	return progress.NewSpinner(label,
		progress.WithWriter(stderr(c)),
		progress.WithQuiet(c.Bool("no-progress")),
	)
}

func stdout(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func stderr(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
