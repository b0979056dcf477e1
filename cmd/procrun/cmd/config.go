package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

const defaultConfigFile = "procrun.toml"

// fileConfig mirrors procrun.toml:
//
//	procfile  = "Procfile.dev"
//	root      = "/srv/app"
//	env_files = [".env", "secrets.yaml"]
//	policy    = "allowed.sha256"
//	timeout   = "30s"
//	log_level = "info"
//
//	[env]
//	RAILS_ENV = "development"
type fileConfig struct {
	Procfile string            `toml:"procfile"`
	Root     string            `toml:"root"`
	EnvFiles []string          `toml:"env_files"`
	Env      map[string]string `toml:"env"`
	Policy   string            `toml:"policy"`
	Timeout  string            `toml:"timeout"`
	LogLevel string            `toml:"log_level"`
}

// loadConfig reads path, or procrun.toml in the current directory when path
// is empty. A missing file is only an error when it was asked for.
func loadConfig(path string, explicit bool) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		path = defaultConfigFile
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fileConfig{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
