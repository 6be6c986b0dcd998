package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/a8m/envsubst"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// EnvFileName is loaded from the config file's directory before variables are substituted.
const EnvFileName = ".env"

// Read reads a config from the given file. Variables from a .env file next to it are added to the
// environment without overriding what is already set, and ${VAR} references are expanded.
func Read(filePath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(filePath), EnvFileName)
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(err, "cannot load %q", envPath)
	}

	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a config from the given reader and specifies where, if applicable, the file the
// reader originated from. The document may use JSON5 comments and trailing commas, but unknown
// fields are rejected.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json5.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "cannot parse config")
	}
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(normalized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "cannot decode config")
	}

	if originalPath != "" && cfg.TexturePath != "" && !filepath.IsAbs(cfg.TexturePath) {
		cfg.TexturePath = filepath.Join(filepath.Dir(originalPath), cfg.TexturePath)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
