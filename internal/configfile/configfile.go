// Package configfile loads and writes the renderer configuration as YAML.
package configfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/cellgrid"
)

// EnvPrefix prefixes the environment variables that override file
// settings, e.g. CELLGRID_FONT_SIZE.
const EnvPrefix = "CELLGRID"

// Load reads the configuration at path on top of cellgrid.DefaultConfig.
// A missing file or an empty path yields the defaults.
func Load(path string) (cellgrid.Config, error) {
	def := cellgrid.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := setDefaults(v, def); err != nil {
		return cellgrid.Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return cellgrid.Config{}, fmt.Errorf("configfile: read %s: %w", path, err)
			}
		}
	}

	var cfg cellgrid.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cellgrid.Config{}, fmt.Errorf("configfile: decode: %w", err)
	}
	if _, err := cfg.Palette(); err != nil {
		return cellgrid.Config{}, fmt.Errorf("configfile: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key of def so that partial files and
// environment variables fill in around them.
func setDefaults(v *viper.Viper, def cellgrid.Config) error {
	data, err := yaml.Marshal(def)
	if err != nil {
		return fmt.Errorf("configfile: encode defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("configfile: decode defaults: %w", err)
	}
	for key, value := range flatten("", tree) {
		v.SetDefault(key, value)
	}
	return nil
}

func flatten(prefix string, tree map[string]any) map[string]any {
	out := make(map[string]any)
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			for sk, sv := range flatten(key, sub) {
				out[sk] = sv
			}
			continue
		}
		out[key] = val
	}
	return out
}

// Dump writes cfg as YAML.
func Dump(w io.Writer, cfg cellgrid.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("configfile: encode: %w", err)
	}
	return enc.Close()
}

// Write stores cfg at path, creating the directory. It refuses to
// replace an existing file unless overwrite is set.
func Write(path string, cfg cellgrid.Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configfile: config already exists at %s", path)
		}
	}
	var sb strings.Builder
	if err := Dump(&sb, cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(sb.String()), 0o600)
}
