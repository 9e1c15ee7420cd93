package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/vrttools/pkg/vrt/internalerr"
	"github.com/cognicore/vrttools/pkg/vrt/parses"
	"github.com/cognicore/vrttools/pkg/vrt/scramble"
	"github.com/cognicore/vrttools/pkg/vrt/timespan"
)

// Config is a tool profile. Every section belongs to one tool; Input is
// shared.
type Config struct {
	Input     Input     `yaml:"input"`
	Scramble  Scramble  `yaml:"scramble"`
	Timespans Timespans `yaml:"timespans"`
	Parses    Parses    `yaml:"parses"`
	Lemgrams  Lemgrams  `yaml:"lemgrams"`
}

// Input describes how input files are read.
type Input struct {
	Encoding    string `yaml:"encoding"`
	WrapElement string `yaml:"wrap_element"`
}

// Scramble configures vrt scramble.
type Scramble struct {
	Unit   string `yaml:"unit"`
	Within string `yaml:"within"`
	Seed   int64  `yaml:"seed"`
}

// Timespans configures vrt extract-timespans.
type Timespans struct {
	Patterns      []string `yaml:"patterns"`
	Excludes      []string `yaml:"excludes"`
	Unknown       bool     `yaml:"unknown"`
	Fixed         string   `yaml:"fixed"`
	TwoDigitYears bool     `yaml:"two_digit_years"`
	CenturyPivot  int      `yaml:"century_pivot"`
	Strict        bool     `yaml:"strict"`
}

// Parses configures vrt add-parses.
type Parses struct {
	Database                     string `yaml:"database"`
	OutputDir                    string `yaml:"output_dir"`
	Sentence                     string `yaml:"sentence"`
	LemmaWithoutCompoundBoundary bool   `yaml:"lemma_without_compound_boundary"`
}

// Lemgrams configures vrt add-lemgrams. Field numbers are 1-based.
type Lemgrams struct {
	PosMapFile      string `yaml:"pos_map_file"`
	InversePosMap   bool   `yaml:"inverse_pos_map"`
	LemmaField      int    `yaml:"lemma_field"`
	PosField        int    `yaml:"pos_field"`
	SkipEmptyLemmas bool   `yaml:"skip_empty_lemmas"`
}

// Default returns the built-in profile.
func Default() *Config {
	return &Config{
		Scramble: Scramble{
			Unit:   scramble.DefaultUnit,
			Within: scramble.DefaultWithin,
			Seed:   scramble.DefaultSeed,
		},
		Timespans: Timespans{
			CenturyPivot: timespan.DefaultCenturyPivot,
		},
		Parses: Parses{
			OutputDir:                    ".",
			Sentence:                     parses.DefaultSentence,
			LemmaWithoutCompoundBoundary: true,
		},
		Lemgrams: Lemgrams{
			LemmaField: 2,
			PosField:   3,
		},
	}
}

// Load reads a YAML profile and overlays it on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays a YAML profile on the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%v: %w", err, internalerr.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Scramble.Unit == "" || c.Scramble.Within == "":
		return fmt.Errorf("scramble unit and within must be set: %w", internalerr.ErrInvalidConfig)
	case c.Timespans.CenturyPivot < 0 || c.Timespans.CenturyPivot > 99:
		return fmt.Errorf("century pivot %d not in 0..99: %w", c.Timespans.CenturyPivot, internalerr.ErrInvalidConfig)
	case c.Lemgrams.LemmaField < 1 || c.Lemgrams.PosField < 1:
		return fmt.Errorf("lemgram field numbers start at 1: %w", internalerr.ErrInvalidConfig)
	}
	return nil
}
