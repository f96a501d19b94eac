package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Knagis/GeoTransformer-sub000/gpx"
	"github.com/Knagis/GeoTransformer-sub000/internal/config"
	"github.com/Knagis/GeoTransformer-sub000/internal/logging"
)

// app is the state shared by the subcommands, resolved before any of them
// runs.
type app struct {
	v   *viper.Viper
	cfg config.Config
	log *zap.Logger
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	a := &app{v: v, log: zap.NewNop()}
	var configFile string

	root := &cobra.Command{
		Use:           "geotransformer",
		Short:         "Convert, merge and package GPX geocache files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				v.SetConfigFile(configFile)
			}
			if err := config.Read(v); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			log, err := logging.NewWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default geotransformer.yaml in . or $HOME/.config)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "console", "Log format: console, json")
	flags.String("preset", "default", "Output preset: default, compatibility, roundtrip")
	flags.String("gpx", "", "Override the GPX version of the preset: 1.0, 1.1")
	flags.String("geocache", "", "Override the Groundspeak version of the preset: 1.0.0, 1.0.1, 1.0.2")
	flags.Bool("prefix", false, "Write Groundspeak elements with the groundspeak: prefix")
	flags.Bool("tokenizer", false, "Read input with the streaming tokenizer")
	bindFlags(v, flags, map[string]string{
		config.LogLevel:       "log-level",
		config.LogFormat:      "log-format",
		config.OutputPreset:   "preset",
		config.OutputGpx:      "gpx",
		config.OutputGeocache: "geocache",
		config.OutputPrefix:   "prefix",
		config.InputTokenizer: "tokenizer",
	})

	root.AddCommand(
		newConvertCommand(a),
		newMergeCommand(a),
		newGGZCommand(a),
		newInfoCommand(a),
	)
	return root
}

// bindFlags binds the flags of fs to the setting keys they override.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func (a *app) load(path string) (*gpx.Document, error) {
	opts := []gpx.Option{gpx.WithLogger(a.log)}
	if a.cfg.Input.Tokenizer {
		opts = append(opts, gpx.WithTokenizer())
	}
	doc, err := gpx.LoadFile(path, opts...)
	if err != nil {
		return nil, err
	}
	a.log.Debug("loaded", zap.String("path", path), zap.Int("waypoints", doc.Waypoints().Len()))
	return doc, nil
}

// write writes doc to path, or to stdout when path is empty or "-".
func (a *app) write(cmd *cobra.Command, path string, doc *gpx.Document) error {
	if path == "" || path == "-" {
		_, err := doc.WriteTo(cmd.OutOrStdout(), a.cfg.Output)
		return err
	}
	return createFile(path, func(w io.Writer) error {
		_, err := doc.WriteTo(w, a.cfg.Output)
		return err
	})
}

func createFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
