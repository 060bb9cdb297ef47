package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/orphan/pkg/config"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

const defaultConfigFile = "orphan.toml"

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration as TOML",
				Description: `Shows the defaults merged with the config file named by --config or found
in the current directory.`,
				Action: runConfigShowCmd,
			},
			{
				Name:      "init",
				Usage:     "Write a config file with the default settings",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: runConfigInitCmd,
			},
			{
				Name:      "validate",
				Usage:     "Check a config file for syntax errors and invalid values",
				ArgsUsage: "[file]",
				Action:    runConfigValidateCmd,
			},
		},
	}
}

// configSource returns the file named by the argument, --config, or the
// first config file found in the current directory.
func configSource(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	if path := c.String("config"); path != "" {
		return path
	}
	return config.Find(afero.NewOsFs(), ".")
}

func runConfigShowCmd(c *cli.Context) error {
	cfg, source := config.DefaultConfig(), configSource(c)
	if source != "" {
		var err error
		if cfg, err = config.Load(source); err != nil {
			return err
		}
	}

	content, err := cfg.EncodeTOML()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	w := stdout(c)
	if source != "" {
		fmt.Fprintf(w, "# Configuration from: %s\n\n", source)
	} else {
		fmt.Fprintln(w, "# Default configuration (no config file found)")
	}
	_, err = w.Write(content)
	return err
}

func runConfigInitCmd(c *cli.Context) error {
	path := defaultConfigFile
	if c.Args().Len() > 0 {
		path = c.Args().First()
	}

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.New(color.FgGreen).Fprintf(stdout(c), "Created %s\n", path)
	return nil
}

func generateDefaultConfig() (string, error) {
	content, err := config.DefaultConfig().EncodeTOML()
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# orphan configuration\n")
	buf.WriteString("# Paths are relative to the project root (the directory holding package.json).\n\n")
	buf.Write(content)
	return buf.String(), nil
}

func runConfigValidateCmd(c *cli.Context) error {
	source := configSource(c)
	if source == "" {
		color.New(color.FgYellow).Fprintln(stdout(c), "No config file found. Default configuration is valid.")
		return nil
	}

	if _, err := config.Validate(source); err != nil {
		color.New(color.FgRed).Fprintln(stdout(c), "Configuration validation failed:")
		fmt.Fprintf(stdout(c), "  - %s\n", err)
		return err
	}
	color.New(color.FgGreen).Fprintf(stdout(c), "Configuration valid: %s\n", source)
	return nil
}
