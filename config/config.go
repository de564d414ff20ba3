// Package config holds the user-facing settings of the geometry cache and
// loads them from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/geocache/model"
)

// Cache size limits in MiB, as offered to users.
const (
	MinCacheSizeMiB     = 64
	MaxCacheSizeMiB     = 16384
	DefaultCacheSizeMiB = 512

	// legacyDivisor converts the retired modelCacheSizeMiB setting, whose
	// values were sized for a less compact vertex format.
	legacyDivisor = 4
)

// ErrInvalidSettings is returned when a settings document cannot be used.
var ErrInvalidSettings = errors.New("config: invalid settings")

// Settings are the toggles and limits exposed to the user.
type Settings struct {
	// ModelBatching reuses identical models within the same frame.
	ModelBatching bool `yaml:"useModelBatching"`
	// ModelCaching reuses model data from previous frames.
	ModelCaching bool `yaml:"useModelCaching"`
	// CacheSizeMiB is the cross-frame cache budget. Zero or less disables
	// storage while leaving the rest of the pipeline unchanged.
	CacheSizeMiB int `yaml:"modelCacheSizeMiBv2"`
	// Workers is the number of goroutines used to tessellate cache misses.
	Workers int `yaml:"tessellationWorkers"`
}

// Default returns the default settings.
func Default() Settings {
	return Settings{
		ModelBatching: true,
		ModelCaching:  true,
		CacheSizeMiB:  DefaultCacheSizeMiB,
		Workers:       1,
	}
}

// Normalize clamps a positive cache size into the supported range and
// raises Workers to at least 1. A non-positive cache size is kept: it
// means storage is disabled.
func (s Settings) Normalize() Settings {
	if s.CacheSizeMiB > 0 {
		s.CacheSizeMiB = min(max(s.CacheSizeMiB, MinCacheSizeMiB), MaxCacheSizeMiB)
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	return s
}

// BudgetBytes returns the cache budget in bytes, or 0 when storage is
// disabled by a non-positive size.
func (s Settings) BudgetBytes() int64 {
	if s.CacheSizeMiB <= 0 {
		return 0
	}
	return int64(s.CacheSizeMiB) * model.MiB
}

// document mirrors Settings with optional fields so that missing keys keep
// their defaults and the legacy size key can be detected.
type document struct {
	ModelBatching *bool `yaml:"useModelBatching"`
	ModelCaching  *bool `yaml:"useModelCaching"`
	CacheSizeMiB  *int  `yaml:"modelCacheSizeMiBv2"`
	LegacySizeMiB *int  `yaml:"modelCacheSizeMiB"`
	Workers       *int  `yaml:"tessellationWorkers"`
}

// Parse reads settings from a YAML document. Keys that are absent keep
// their default values. The result is normalized.
func Parse(data []byte) (Settings, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	s := Default()
	if doc.ModelBatching != nil {
		s.ModelBatching = *doc.ModelBatching
	}
	if doc.ModelCaching != nil {
		s.ModelCaching = *doc.ModelCaching
	}
	switch {
	case doc.CacheSizeMiB != nil:
		s.CacheSizeMiB = *doc.CacheSizeMiB
	case doc.LegacySizeMiB != nil:
		s.CacheSizeMiB = *doc.LegacySizeMiB / legacyDivisor
	}
	if doc.Workers != nil {
		s.Workers = *doc.Workers
	}
	return s.Normalize(), nil
}

// Load reads settings from a YAML file.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return s, nil
}

// Marshal encodes settings as YAML.
func (s Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
