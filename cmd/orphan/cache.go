package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Import cache commands",
		Subcommands: []*cli.Command{
			{
				Name:      "clear",
				Usage:     "Remove the project's cached import lists",
				ArgsUsage: "[path]",
				Action:    runCacheClearCmd,
			},
		},
	}
}

func runCacheClearCmd(c *cli.Context) error {
	svc, p, err := openProject(c)
	if err != nil {
		return err
	}
	if err := svc.ClearCache(p); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	color.New(color.FgGreen).Fprintf(stdout(c), "Cleared cache in %s\n", p.Config.Cache.Dir)
	return nil
}
