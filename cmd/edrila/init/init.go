// Package initcmder provides the init command for initializing a local .edrila
// directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/cliui"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/config"
)

const (
	dirName    = ".edrila"
	configFile = "config.toml"
)

const initLongDesc string = `Initialize a new .edrila/ directory in the current working directory.

Creates a local .edrila/ directory that takes precedence over the default
~/.edrila/ directory for configuration and stored transcripts.

With --preset, also writes a config.toml seeded from a named preset:
  local    Defaults for the local development assistant
  kafka    Local defaults plus turn events on localhost:9092

An existing config.toml is left alone unless --force is given.

Examples:
  edrila init
  edrila init --preset kafka`

const initShortDesc string = "Initialize a local .edrila/ directory"

func NewInitCmd() *cobra.Command {
	var (
		preset string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), preset, force)
		},
		ValidArgsFunction: cobra.NoFileCompletions,
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Write config.toml from a preset ("+strings.Join(config.ValidPresetNames(), ", ")+")")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config.toml when --preset is given")

	return cmd
}

func runInit(w io.Writer, preset string, force bool) error {
	var cfg *config.Config
	if preset != "" {
		var err error
		cfg, err = config.PresetConfig(preset)
		if err != nil {
			return err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Fprintf(w, "Already initialized: %s\n", dir)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .edrila directory: %w", err)
		}
		fmt.Fprintf(w, "Initialized .edrila directory: %s\n", dir)
	}

	if cfg == nil {
		return nil
	}

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, pass --force to overwrite it", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	msg := fmt.Sprintf("Wrote %s preset to %s",
		cliui.NameStyle.Render(preset),
		cliui.DimStyle.Render(path),
	)
	return cliui.Step(w, msg, func() error {
		return cfger.SaveConfig(cfg)
	})
}
