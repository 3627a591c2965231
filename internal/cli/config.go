package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Defacto2/unarchive"
	"gopkg.in/yaml.v3"
)

// The environment variables that override the configuration file.
const (
	EnvDirname   = "UNARCHIVE_DIRNAME"
	EnvOverwrite = "UNARCHIVE_OVERWRITE"
	Env7z        = "UNARCHIVE_7Z"
	EnvBsdtar    = "UNARCHIVE_BSDTAR"
	EnvUnrar     = "UNARCHIVE_UNRAR"
	EnvUnar      = "UNARCHIVE_UNAR"
)

// LoadConfig returns the default configuration, updated by the YAML file at name
// and then by the environment variables. An empty name skips the file.
//
//	dirname: extracted
//	overwrite: false
//	flat: false
//	timeout: 10m
//	tools:
//	  7z: /opt/7zip/7zz
//	  unrar: /usr/local/bin/unrar
func LoadConfig(name string) (unarchive.Config, error) {
	cfg := unarchive.Config{Dirname: unarchive.Dirname}
	if name != "" {
		data, err := os.ReadFile(name)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", name, err)
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	if cfg.Dirname == "" {
		cfg.Dirname = unarchive.Dirname
	}
	return cfg, validate(cfg)
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *unarchive.Config) error {
	if val, ok := os.LookupEnv(EnvDirname); ok {
		cfg.Dirname = val
	}
	if val, ok := os.LookupEnv(EnvOverwrite); ok {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvOverwrite, err)
		}
		cfg.Overwrite = parsed
	}
	for env, path := range map[string]*string{
		Env7z:     &cfg.Tools.SevenZip,
		EnvBsdtar: &cfg.Tools.Tar,
		EnvUnrar:  &cfg.Tools.Unrar,
		EnvUnar:   &cfg.Tools.Unar,
	} {
		if val, ok := os.LookupEnv(env); ok {
			*path = val
		}
	}
	return nil
}

var ErrDirname = errors.New("the output directory name must be a single path element")

// validate confirms the output directory name is a subdirectory of the folder.
func validate(cfg unarchive.Config) error {
	switch cfg.Dirname {
	case "", ".", "..":
		return fmt.Errorf("%w: %q", ErrDirname, cfg.Dirname)
	}
	if strings.ContainsAny(cfg.Dirname, `/\`) {
		return fmt.Errorf("%w: %q", ErrDirname, cfg.Dirname)
	}
	return nil
}
