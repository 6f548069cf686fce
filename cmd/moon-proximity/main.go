// Command moon-proximity reads a reduced Chebyshev ephemeris and reports
// lunar positions and events: perigee, apogee and the principal phases.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/peterbom/moon-proximity-sub000/internal/astro"
	"github.com/peterbom/moon-proximity-sub000/internal/config"
	"github.com/peterbom/moon-proximity-sub000/internal/ephem"
	"github.com/peterbom/moon-proximity-sub000/internal/logging"
	"github.com/peterbom/moon-proximity-sub000/internal/version"
)

// app holds what every subcommand shares once flags are parsed.
type app struct {
	cfgFile  string
	logLevel string
	dataFile string
	metaFile string

	cfg     *config.Config
	loadErr error
	log     *logging.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{log: logging.New(logging.LevelInfo)}

	root := &cobra.Command{
		Use:           "moon-proximity",
		Short:         "Lunar positions and events from a Chebyshev ephemeris",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadErr
		},
	}

	cobra.OnInitialize(a.initConfig)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.moon-proximity/config.yaml)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&a.dataFile, "data", "", "ephemeris binary file (overrides ephemeris.data_file)")
	pf.StringVar(&a.metaFile, "metadata", "", "ephemeris metadata file (overrides ephemeris.metadata_file)")

	root.AddCommand(
		newPositionCmd(a),
		newEventsCmd(a),
		newCoverageCmd(a),
		newVisibilityCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// initConfig runs before any command. Errors are kept for PersistentPreRunE
// so cobra reports them through the normal path.
func (a *app) initConfig() {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		a.loadErr = err
		a.cfg = config.Default()
		return
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log.SetLevel(logging.ParseLevel(level))

	if a.dataFile != "" {
		a.cfg.Ephemeris.DataFile = a.dataFile
	}
	if a.metaFile != "" {
		a.cfg.Ephemeris.MetadataFile = a.metaFile
	}
	if cfg.File != "" {
		a.log.Debug("config loaded", "file", cfg.File)
	}
}

// openStore opens the configured ephemeris files.
func (a *app) openStore() (*ephem.Store, error) {
	data, meta := a.cfg.Ephemeris.DataFile, a.cfg.Ephemeris.MetadataFile
	if data == "" || meta == "" {
		return nil, errors.New("no ephemeris configured: set --data and --metadata or ephemeris.* in the config file")
	}
	store, err := ephem.Open(data, meta)
	if err != nil {
		return nil, err
	}
	start, end := store.Span()
	a.log.Debug("ephemeris opened",
		"data", data,
		"series", len(store.Kinds()),
		"start", astro.JDToTime(start).Format("2006-01-02"),
		"end", astro.JDToTime(end).Format("2006-01-02"))
	return store, nil
}

// openResolver opens the store and wraps it with the configured constants.
func (a *app) openResolver() (*astro.Resolver, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return astro.NewResolver(store, a.cfg.Physics.Constants()), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
