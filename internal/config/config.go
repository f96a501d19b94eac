// Package config reads the settings of the command line tool from flags,
// GEOTRANSFORMER_* environment variables and an optional geotransformer.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Knagis/GeoTransformer-sub000/gpx"
)

// Setting keys.
const (
	LogLevel       = "log.level"
	LogFormat      = "log.format"
	OutputPreset   = "output.preset"
	OutputGpx      = "output.gpx"
	OutputGeocache = "output.geocache"
	OutputPrefix   = "output.prefix"
	InputTokenizer = "input.tokenizer"
	GGZChunk       = "ggz.chunk"
)

const (
	envPrefix = "GEOTRANSFORMER"
	fileName  = "geotransformer"
)

// Config holds the resolved settings.
type Config struct {
	Log struct {
		Level  string
		Format string
	}
	Output gpx.SerializationOptions
	Input  struct {
		Tokenizer bool
	}
	GGZ struct {
		ChunkSize int
	}
}

// New returns a viper instance with defaults, environment binding and the
// config file search path set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(LogLevel, "info")
	v.SetDefault(LogFormat, "console")
	v.SetDefault(OutputPreset, "default")
	v.SetDefault(InputTokenizer, false)
	v.SetDefault(GGZChunk, 4<<20)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config"))
	}
	return v
}

// Read reads the config file set on v or found on its search path. A
// missing file is not an error.
func Read(v *viper.Viper) error {
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load resolves the settings of v. output.gpx, output.geocache and
// output.prefix override the versions of the selected preset when set.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	c.Log.Level = v.GetString(LogLevel)
	c.Log.Format = v.GetString(LogFormat)
	c.Input.Tokenizer = v.GetBool(InputTokenizer)
	c.GGZ.ChunkSize = v.GetInt(GGZChunk)

	o, err := gpx.Preset(v.GetString(OutputPreset))
	if err != nil {
		return c, err
	}
	if s := v.GetString(OutputGpx); s != "" {
		if o.GpxVersion, err = gpx.ParseGpxVersion(s); err != nil {
			return c, err
		}
	}
	if s := v.GetString(OutputGeocache); s != "" {
		if o.GeocacheVersion, err = gpx.ParseGeocacheVersion(s); err != nil {
			return c, err
		}
	}
	if v.IsSet(OutputPrefix) {
		o.GeocacheNamespaceWithPrefix = v.GetBool(OutputPrefix)
	}
	c.Output = o
	return c, nil
}
