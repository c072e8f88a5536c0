package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/addressform/internal/config"
	"github.com/vango-dev/addressform/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		force bool
		sink  string
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default addressform.json",
		Long: `Write addressform.json with every default spelled out.

Examples:
  addressform init
  addressform init deploy --sink=s3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, sink, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().StringVar(&sink, "sink", config.SinkLog, "Submission sink (log, memory, disk, s3)")

	return cmd
}

func runInit(cmd *cobra.Command, dir, sink string, force bool) error {
	if config.Exists(dir) && !force {
		return errors.Newf(errors.CategoryCLI, "%s already exists", filepath.Join(dir, config.ConfigFileName)).
			WithSuggestion("Pass --force to overwrite it.")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Newf(errors.CategoryCLI, "create %s", dir).Wrap(err)
	}

	cfg := config.New()
	cfg.Submit.Sink = sink
	switch sink {
	case config.SinkDisk:
		cfg.Submit.Dir = "submissions"
	case config.SinkS3:
		cfg.Submit.Bucket = "address-submissions"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	path := filepath.Join(dir, config.ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Wrote %s", path)
	return nil
}
