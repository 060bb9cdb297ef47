package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/orphan/internal/service/analysis"
	"github.com/panbanda/orphan/pkg/watch"
	"github.com/urfave/cli/v2"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-run the analysis whenever project files change",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: 500 * time.Millisecond,
				Usage: "Quiet period before re-analyzing",
			},
			&cli.BoolFlag{
				Name:  "skip-empty-dirs",
				Usage: "Do not look for empty directories",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	_, p, err := openProject(c)
	if err != nil {
		return err
	}

	watcher, err := watch.NewWatcher(p.Root, p.Config, c.Duration("debounce"), watch.WithOutput(stdout(c)))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	// Reopen on every run so ignore list and alias config edits apply.
	run := func() {
		svc, current, err := openProjectAt(c, p.Root)
		if err == nil {
			err = printReport(c, svc, current)
		}
		if err != nil {
			color.New(color.FgRed).Fprintf(stderr(c), "Error: %v\n", err)
		}
	}
	run()
	watcher.SetCallback(func([]string) { run() })

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(stdout(c), "\nStopping watch...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// printReport analyzes p and writes the report with the global format flags.
func printReport(c *cli.Context, svc *analysis.Service, p *analysis.Project) error {
	report, err := analyzeProject(c, svc, p, c.Bool("skip-empty-dirs"))
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, p)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(renderReport(report))
}
