package main

import (
	"github.com/panbanda/orphan/internal/output"
	"github.com/urfave/cli/v2"
)

func emptyDirsCmd() *cli.Command {
	return &cli.Command{
		Name:      "empty-dirs",
		Usage:     "List directories without files",
		ArgsUsage: "[path | repo[@ref]]",
		Action:    runEmptyDirsCmd,
	}
}

func runEmptyDirsCmd(c *cli.Context) error {
	svc, p, cleanup, err := openSource(c)
	defer cleanup()
	if err != nil {
		return err
	}

	dirs, err := svc.EmptyDirs(p)
	if err != nil {
		return err
	}
	if dirs == nil {
		dirs = []string{}
	}

	formatter, err := newFormatter(c, p)
	if err != nil {
		return err
	}
	defer formatter.Close()

	rows := make([][]string, len(dirs))
	for i, d := range dirs {
		rows[i] = []string{d}
	}
	table := output.NewTable("Empty Directories", []string{"Directory"}, rows, nil, dirs)
	table.Empty = "No empty directories found."
	return formatter.Output(table)
}
