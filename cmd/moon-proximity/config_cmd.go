package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peterbom/moon-proximity-sub000/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var (
		path  string
		force bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := path
			if target == "" {
				target = config.DefaultPath()
			}
			cfg := config.Default()
			cfg.Ephemeris = a.cfg.Ephemeris
			if force {
				cfg.Ephemeris = keepEphemeris(target, cfg.Ephemeris)
			}
			if err := config.Save(target, cfg, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", target)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "file to write (default is $HOME/.moon-proximity/config.yaml)")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file, keeping its ephemeris paths unless --data or --metadata is given")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if a.cfg.File != "" {
				fmt.Fprintf(w, "# from %s\n", a.cfg.File)
			}
			return config.Write(w, a.cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

// keepEphemeris fills paths missing from eph with those of the config file
// at path. An unreadable or invalid file contributes nothing.
func keepEphemeris(path string, eph config.EphemerisConfig) config.EphemerisConfig {
	prev, err := config.Load(path)
	if err != nil {
		return eph
	}
	if eph.DataFile == "" {
		eph.DataFile = prev.Ephemeris.DataFile
	}
	if eph.MetadataFile == "" {
		eph.MetadataFile = prev.Ephemeris.MetadataFile
	}
	return eph
}
