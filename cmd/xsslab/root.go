package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lcalzada-xor/xsslab/pkg/config"
	"github.com/lcalzada-xor/xsslab/pkg/logger"
	"github.com/lcalzada-xor/xsslab/pkg/network"
	"github.com/lcalzada-xor/xsslab/pkg/presets"
)

// app carries the resolved configuration to every subcommand.
type app struct {
	cfgFile   string
	verbosity int
	logFormat string

	v        *viper.Viper
	settings config.Settings
	log      *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "xsslab",
		Short: "Interactive cross-site scripting lab",
		Long: `xsslab renders attacker supplied payloads through a catalog of output
techniques inside an emulated browser and shows which of them end up
executing script.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./xsslab.yaml)")
	root.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "verbose output (-v, -vv)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: pretty or json")
	root.PersistentFlags().String("presets-url", "", "base URL preset files are fetched from (default: embedded)")

	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newCatalogCmd(a),
		newPresetsCmd(a),
		newSourceCmd(a),
		newVerifyCmd(a),
	)
	return root
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"presets-url": "presets.base_url",
	"listen":      "server.listen",
	"workers":     "verify.workers",
	"auto-update": "render.auto_update",
}

func (a *app) init(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}
	if err := config.Load(a.v, a.cfgFile); err != nil {
		return err
	}
	a.settings = config.FromViper(a.v)

	format := a.settings.LogFormat
	if a.logFormat != "" {
		format = a.logFormat
	}
	level := a.settings.LogLevel
	switch {
	case a.verbosity >= 2:
		level = "trace"
	case a.verbosity == 1:
		level = "debug"
	}
	a.log = logger.FromFormat(format, level)
	a.log.VV("Configuration: %+v", a.settings)
	return nil
}

// loader returns where preset text comes from.
func (a *app) loader() presets.Loader {
	if a.settings.PresetsBaseURL == "" {
		return presets.EmbeddedLoader{}
	}
	client := network.NewClient(a.settings.FetchTimeout, a.settings.FetchRateLimit,
		network.WithLogger(a.log.With("fetch")))
	return presets.NewHTTPLoader(a.settings.PresetsBaseURL, client, a.log)
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "   \x1b[38;5;93m▀▄▀ ▄▀▀ ▄▀▀ █   ▄▀▄ ██▄\x1b[0m")
	fmt.Fprintln(w, "   \x1b[38;5;129m█ █ ▄██ ▄██ █▄▄ █▀█ █▄█\x1b[0m")
	fmt.Fprintf(w, "   \x1b[38;5;141m%s\x1b[0m | \x1b[38;5;141m%s\x1b[0m\n", config.Version, config.Author)
	fmt.Fprintln(w, "")
}
