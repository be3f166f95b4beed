package tagwire

import (
	"crypto/sha512"
	"encoding/json"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// Digest algorithms accepted in Options.Digest.
const (
	DigestBlake3  = "blake3"
	DigestSHA512  = "sha512"
	DigestBlake2b = "blake2b"
)

// DefaultMaxElements bounds decoded counts and lengths when Options leaves
// MaxElements unset.
const DefaultMaxElements = 1 << 24

type Options struct {
	// Digest names the schema fingerprint hash; empty selects blake3.
	Digest string `yaml:"digest" toml:"digest" json:"digest"`
	// MaxElements caps every element count and byte length read from a
	// stream. Larger prefixes are reported as corrupt.
	MaxElements int `yaml:"max_elements" toml:"max_elements" json:"max_elements"`
	// Logger overrides the package logger for one builder.
	Logger *zap.Logger `yaml:"-" toml:"-" json:"-"`
}

func (o Options) withDefaults() Options {
	if o.Digest == "" {
		o.Digest = DigestBlake3
	}
	if o.MaxElements <= 0 {
		o.MaxElements = DefaultMaxElements
	}
	if o.Logger == nil {
		o.Logger = Logger()
	}
	return o
}

func (o Options) newHash() (hash.Hash, error) {
	switch strings.ToLower(o.Digest) {
	case DigestBlake3, "":
		return blake3.New(), nil
	case DigestSHA512:
		return sha512.New(), nil
	case DigestBlake2b:
		return blake2b.New512(nil)
	default:
		return nil, fmt.Errorf("tagwire: unknown digest %q", o.Digest)
	}
}

// LoadOptions reads Options from a YAML, TOML or JSON file, picked by
// extension. JSON files may carry comments and trailing commas.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("options load failed (%s): %w", path, err)
	}
	var opts Options
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &opts)
	case ".toml":
		err = toml.Unmarshal(data, &opts)
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), &opts)
	default:
		return Options{}, fmt.Errorf("options load failed (%s): unknown extension", path)
	}
	if err != nil {
		return Options{}, fmt.Errorf("options parse failed (%s): %w", path, err)
	}
	if _, err := opts.newHash(); err != nil {
		return Options{}, fmt.Errorf("options invalid (%s): %w", path, err)
	}
	return opts, nil
}
