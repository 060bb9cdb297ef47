package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/orphan/internal/report"
	"github.com/urfave/cli/v2"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Write a standalone HTML report of the analysis",
		ArgsUsage: "[path | repo[@ref]]",
		Description: `Analyzes the project and renders obsolete files, empty directories and
import graph statistics as a single HTML page. Use the global --output flag
to write it to a file.

With --from, the report is rendered from analysis JSON saved earlier with
"orphan --format json analyze". Saved analyses carry no import graph, so
that section is left out.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "from",
				Usage: "Render from saved analysis JSON instead of analyzing",
			},
			&cli.IntFlag{
				Name:  "top",
				Value: 10,
				Usage: "Number of most depended-upon files to show",
			},
		},
		Action: runReportCmd,
	}
}

func runReportCmd(c *cli.Context) error {
	renderer, err := report.NewRenderer()
	if err != nil {
		return fmt.Errorf("load report template: %w", err)
	}

	w := stdout(c)
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		w = f
	}

	meta := report.Metadata{
		GeneratedAt:   time.Now(),
		OrphanVersion: version,
	}

	if from := c.String("from"); from != "" {
		if err := renderer.RenderFile(w, meta, from, c.Int("top")); err != nil {
			return err
		}
	} else {
		svc, p, cleanup, err := openSource(c)
		defer cleanup()
		if err != nil {
			return err
		}
		analysis, err := analyzeProject(c, svc, p, false)
		if err != nil {
			return err
		}
		if c.Args().Len() > 0 {
			meta.Project = c.Args().First()
		}
		if err := renderer.Render(w, meta, analysis, c.Int("top")); err != nil {
			return fmt.Errorf("render report: %w", err)
		}
	}

	if path := c.String("output"); path != "" {
		color.New(color.FgGreen).Fprintf(stderr(c), "Report written to %s\n", path)
	}
	return nil
}
