package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/orphan/internal/output"
	"github.com/urfave/cli/v2"
)

func ignoreCmd() *cli.Command {
	return &cli.Command{
		Name:      "ignore",
		Usage:     "Add files to the ignore list so they are never reported",
		ArgsUsage: "<path...>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "list",
				Usage: "Print the current ignore list",
			},
		},
		Action: runIgnoreCmd,
	}
}

func runIgnoreCmd(c *cli.Context) error {
	start := c.String("root")
	if start == "" {
		start = "."
	}
	_, p, err := openProjectAt(c, start)
	if err != nil {
		return err
	}

	if c.Bool("list") {
		formatter, err := newFormatter(c, p)
		if err != nil {
			return err
		}
		defer formatter.Close()

		entries := p.Ignore.Entries()
		rows := make([][]string, len(entries))
		for i, e := range entries {
			rows[i] = []string{e}
		}
		table := output.NewTable("Ignored Files", []string{"Path"}, rows, nil, entries)
		table.Empty = "The ignore list is empty."
		return formatter.Output(table)
	}

	if c.Args().Len() == 0 {
		return errors.New("at least one path is required")
	}

	f := output.NewWriterFormatter(output.FormatText, stdout(c), !color.NoColor && p.Config.Output.Color)
	for _, arg := range c.Args().Slice() {
		rel, err := projectRelative(p.Root, arg)
		if err != nil {
			return err
		}
		if err := p.Ignore.Add(rel); err != nil {
			return fmt.Errorf("update ignore list: %w", err)
		}
		f.Success("Ignoring %s", rel)
	}
	return nil
}

// projectRelative turns a path given on the command line into a
// slash-separated path relative to root.
func projectRelative(root, arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("invalid path %s: %w", arg, err)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not inside the project %s", arg, root)
	}
	return filepath.ToSlash(rel), nil
}
