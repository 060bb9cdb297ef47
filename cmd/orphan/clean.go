package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/orphan/internal/output"
	"github.com/panbanda/orphan/internal/quarantine"
	"github.com/panbanda/orphan/internal/service/analysis"
	"github.com/panbanda/orphan/internal/vcs"
	"github.com/panbanda/orphan/pkg/analyzer/obsolete"
	"github.com/urfave/cli/v2"
)

func cleanCmd() *cli.Command {
	return &cli.Command{
		Name:      "clean",
		Usage:     "Move obsolete files and empty directories into the quarantine directory",
		ArgsUsage: "[path]",
		Description: `Each obsolete file is shown with its reason and you choose to move it (y),
keep it (n), or add it to the ignore list so it is never reported again (i).
Files are copied into the quarantine directory, keeping their project-relative
path, and then removed. Directories left empty afterwards are offered next.

Inside a git worktree with uncommitted changes, --all refuses to run unless
--force is given.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"yes", "y"},
				Usage:   "Move everything without asking",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Allow --all on a git worktree with uncommitted changes",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Only list what would be moved",
			},
			&cli.BoolFlag{
				Name:  "skip-empty-dirs",
				Usage: "Leave empty directories in place",
			},
		},
		Action: runCleanCmd,
	}
}

// answer is a reply to a per-file prompt.
type answer int

const (
	answerNo answer = iota
	answerYes
	answerIgnore
	answerQuit
)

// prompter reads single-line answers from the user.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// ask repeats question until a recognized answer arrives. End of input
// counts as quit.
func (p *prompter) ask(question string) answer {
	for {
		fmt.Fprint(p.out, question)
		if !p.in.Scan() {
			fmt.Fprintln(p.out)
			return answerQuit
		}
		switch strings.ToLower(strings.TrimSpace(p.in.Text())) {
		case "y", "yes", "s":
			return answerYes
		case "n", "no", "":
			return answerNo
		case "i", "ignore":
			return answerIgnore
		case "q", "quit":
			return answerQuit
		}
	}
}

// confirm asks a yes/no question defaulting to no.
func (p *prompter) confirm(question string) bool {
	return p.ask(question+" [y/N]: ") == answerYes
}

func runCleanCmd(c *cli.Context) error {
	svc, p, err := openProject(c)
	if err != nil {
		return err
	}

	report, err := analyzeProject(c, svc, p, true)
	if err != nil {
		return err
	}

	f := output.NewWriterFormatter(output.FormatText, stdout(c), !color.NoColor && p.Config.Output.Color)
	mover := quarantine.New(p.Root, p.Config.Quarantine.Dir, quarantine.WithLogger(slog.Default()))
	ask := newPrompter(c.App.Reader, stdout(c))
	all, dryRun := c.Bool("all"), c.Bool("dry-run")

	if !dryRun && len(report.Obsolete) > 0 {
		if err := checkWorktree(f, p.Root, all && !c.Bool("force")); err != nil {
			return err
		}
	}

	if len(report.Obsolete) == 0 {
		f.Success("No obsolete files found.")
	} else if dryRun {
		f.Info("Would move %d file(s) to %s:", len(report.Obsolete), mover.Dir())
		for _, file := range report.Obsolete {
			fmt.Fprintf(f.Writer(), "  %s (%s)\n", file.Path, file.Reason)
		}
	} else if all {
		if err := moveAll(c.Context, f, mover, report.Obsolete); err != nil {
			return err
		}
	} else {
		if err := moveInteractive(f, ask, mover, p, report.Obsolete); err != nil {
			return err
		}
	}

	if !c.Bool("skip-empty-dirs") {
		if err := cleanEmptyDirs(c.Context, f, ask, svc, p, mover, all, dryRun); err != nil {
			return err
		}
	}

	if !dryRun {
		f.Info("Quarantined items are in %s", mover.Dir())
	}
	return nil
}

// checkWorktree warns when the project's git worktree has uncommitted
// changes. With strict set the changes are an error instead. Projects outside
// git are not checked.
func checkWorktree(f *output.Formatter, root string, strict bool) error {
	changed, err := vcs.ChangedFiles(root)
	if errors.Is(err, vcs.ErrNotRepository) {
		return nil
	}
	if err != nil {
		slog.Debug("git status unavailable", "root", root, "error", err)
		return nil
	}
	if len(changed) == 0 {
		return nil
	}
	if strict {
		return fmt.Errorf("%w (%d file(s)); commit or stash them, or pass --force", vcs.ErrDirtyWorkingDir, len(changed))
	}
	f.Warning("The git worktree has %d uncommitted change(s); moved files cannot be restored from git.", len(changed))
	return nil
}

func moveAll(ctx context.Context, f *output.Formatter, mover *quarantine.Mover, files []obsolete.ObsoleteFile) error {
	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = file.Path
	}

	result, err := mover.MoveFiles(ctx, paths)
	if err != nil {
		return err
	}
	for _, m := range result.Moved {
		f.Success("Moved %s -> %s", m.From, m.To)
	}
	for _, fail := range result.Failed {
		f.Warning("Could not move %s: %s", fail.Path, fail.Error)
	}
	return nil
}

func moveInteractive(f *output.Formatter, ask *prompter, mover *quarantine.Mover, p *analysis.Project, files []obsolete.ObsoleteFile) error {
	f.Info("Found %d obsolete file(s).", len(files))
	for i, file := range files {
		fmt.Fprintf(f.Writer(), "\n[%d/%d] file://%s\n", i+1, len(files), filepath.Join(p.Root, filepath.FromSlash(file.Path)))
		fmt.Fprintf(f.Writer(), "Reason: %s\n", file.Reason)

		switch ask.ask("Move this file? [y]es / [n]o / [i]gnore always / [q]uit: ") {
		case answerYes:
			to, err := mover.MoveFile(file.Path)
			if err != nil {
				f.Warning("Could not move %s: %v", file.Path, err)
				continue
			}
			f.Success("Moved to %s", to)
		case answerIgnore:
			if err := p.Ignore.Add(file.Path); err != nil {
				return fmt.Errorf("update ignore list: %w", err)
			}
			f.Success("Added to %s", p.Config.Scan.IgnoreFile)
		case answerQuit:
			return nil
		}
	}
	return nil
}

// cleanEmptyDirs offers the directories that are empty after files moved.
func cleanEmptyDirs(ctx context.Context, f *output.Formatter, ask *prompter, svc *analysis.Service, p *analysis.Project, mover *quarantine.Mover, all, dryRun bool) error {
	dirs, err := svc.EmptyDirs(p)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return nil
	}

	fmt.Fprintln(f.Writer())
	f.Info("Empty directories:")
	for _, d := range dirs {
		fmt.Fprintf(f.Writer(), "  %s\n", d)
	}
	if dryRun {
		return nil
	}
	if !all && !ask.confirm(fmt.Sprintf("Move empty directories to %s?", mover.Dir())) {
		return nil
	}

	result, err := mover.MoveEmptyDirs(ctx, dirs)
	if err != nil {
		return err
	}
	for _, m := range result.Moved {
		f.Success("Removed %s", m.From)
	}
	for _, fail := range result.Failed {
		f.Warning("Could not remove %s: %s", fail.Path, fail.Error)
	}
	return nil
}
