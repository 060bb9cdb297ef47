package main

import (
	"fmt"

	"github.com/panbanda/orphan/internal/output"
	"github.com/panbanda/orphan/internal/service/analysis"
	"github.com/panbanda/orphan/pkg/analyzer/obsolete"
	"github.com/urfave/cli/v2"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Report obsolete files and empty directories",
		ArgsUsage: "[path | repo[@ref]]",
		Description: `The argument may also name a remote git repository, which is cloned
shallowly into a temporary directory for the run:

  orphan analyze vercel/commerce
  orphan analyze github.com/owner/site@v2.1.0
  orphan analyze git@github.com:owner/site.git@main`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "skip-empty-dirs",
				Usage: "Do not look for empty directories",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	svc, p, cleanup, err := openSource(c)
	defer cleanup()
	if err != nil {
		return err
	}

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

// analyzeProject runs the analysis behind a progress bar.
func analyzeProject(c *cli.Context, svc *analysis.Service, p *analysis.Project, skipEmptyDirs bool) (*obsolete.Report, error) {
	tracker := newSpinner(c, "Analyzing imports...")
	report, err := svc.Analyze(c.Context, p, analysis.Options{
		OnStart:       tracker.SetTotal,
		OnProgress:    tracker.Tick,
		SkipEmptyDirs: skipEmptyDirs,
	})
	if err != nil {
		tracker.FinishError(err)
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSuccess()
	return report, nil
}

// renderReport lays the report out as tables for text and markdown output;
// structured formats serialize the report itself.
func renderReport(report *obsolete.Report) *output.Report {
	obsoleteRows := make([][]string, 0, len(report.Obsolete))
	for _, f := range report.Obsolete {
		obsoleteRows = append(obsoleteRows, []string{f.Path, f.Reason.String()})
	}
	files := output.NewTable("Obsolete Files", []string{"File", "Reason"}, obsoleteRows, nil, nil)
	files.Empty = "No obsolete files found."

	dirRows := make([][]string, 0, len(report.EmptyDirs))
	for _, d := range report.EmptyDirs {
		dirRows = append(dirRows, []string{d})
	}
	dirs := output.NewTable("Empty Directories", []string{"Directory"}, dirRows, nil, nil)
	dirs.Empty = "No empty directories found."

	sections := []output.Renderable{files, dirs}

	if len(report.Warnings) > 0 {
		warnRows := make([][]string, 0, len(report.Warnings))
		for _, w := range report.Warnings {
			warnRows = append(warnRows, []string{w.Path, w.Message})
		}
		sections = append(sections, output.NewTable("Warnings", []string{"File", "Error"}, warnRows, nil, nil))
	}

	s := report.Summary
	sections = append(sections, &output.Section{
		Title: "Summary",
		Content: fmt.Sprintf("Files: %d  Entry points: %d  Reachable: %d  Imports: %d\nObsolete: %d  Empty directories: %d  Warnings: %d",
			s.TotalFiles, s.EntryPoints, s.ReachableFiles, s.Edges,
			s.ObsoleteFiles, s.EmptyDirs, s.Warnings),
	})

	return &output.Report{
		Title:    "Project: " + report.Root,
		Sections: sections,
		Data:     report,
	}
}
