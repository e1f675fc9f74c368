package config

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bytecodealliance/componentize-go/errors"
)

const (
	// FileName is the config file name without extension.
	FileName = "componentize-go"
	// FileType is the config file format.
	FileType = "toml"
	// EnvPrefix prefixes environment overrides, e.g. COMPONENTIZE_GO_WASM_TOOLS.
	EnvPrefix = "COMPONENTIZE_GO"
)

// Keys, shared by the file, the environment and flag bindings.
const (
	KeyGo          = "go"
	KeyWasmTools   = "wasm_tools"
	KeyWitPath     = "wit_path"
	KeyWorld       = "world"
	KeyFeatures    = "features"
	KeyAllFeatures = "all_features"
	KeyVerbose     = "verbose"
	KeyAdapter     = "adapter"
)

// Config holds settings shared by every command.
type Config struct {
	Go          string   `mapstructure:"go"`
	WasmTools   string   `mapstructure:"wasm_tools"`
	World       string   `mapstructure:"world"`
	WitPath     []string `mapstructure:"wit_path"`
	Features    []string `mapstructure:"features"`
	AllFeatures bool     `mapstructure:"all_features"`
	Verbose     bool     `mapstructure:"verbose"`
	// Adapter is a wasi_snapshot_preview1 adapter module used instead of
	// the bundled one.
	Adapter string `mapstructure:"adapter"`
}

// LoadOptions controls Load.
type LoadOptions struct {
	// File is an explicit config file; it must exist when set.
	File string
	// Dir is searched for componentize-go.toml when File is empty.
	Dir string
	// Flags maps config keys to the flags that override them.
	Flags map[string]*pflag.Flag
}

// Load reads the configuration. A missing default config file is not an
// error.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()
	v.SetDefault(KeyWasmTools, "")
	v.SetDefault(KeyGo, "")
	v.SetDefault(KeyWorld, "")
	v.SetDefault(KeyWitPath, []string{})
	v.SetDefault(KeyFeatures, []string{})
	v.SetDefault(KeyAllFeatures, false)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyAdapter, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, "", errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "bind flag --"+flag.Name)
		}
	}

	used := ""
	switch {
	case opts.File != "":
		if _, err := os.Stat(opts.File); err != nil {
			return nil, "", errors.IO(errors.PhaseConfig, "config file not found", opts.File, err)
		}
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", errors.New(errors.PhaseConfig, errors.KindParse).
				Path(opts.File).
				Detail("failed to read config").
				Cause(err).
				Build()
		}
		used = opts.File
	default:
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.SetConfigName(FileName)
		v.SetConfigType(FileType)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, "", errors.New(errors.PhaseConfig, errors.KindParse).
					Path(dir).
					Detail("failed to read %s.%s", FileName, FileType).
					Cause(err).
					Build()
			}
		} else {
			used = v.ConfigFileUsed()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", errors.Wrap(errors.PhaseConfig, errors.KindParse, err, "failed to decode config")
	}
	cfg.WitPath = splitList(cfg.WitPath)
	return &cfg, used, nil
}

// splitList expands comma-separated entries, which is how list values
// arrive from the environment.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
