package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// ErrInvalidConfig is returned by Validate for out-of-range values.
var ErrInvalidConfig = errors.New("invalid configuration")

// TuningConfig holds the filter thresholds and replay settings. Fields
// omitted from the JSON keep their defaults through the Get* methods.
type TuningConfig struct {
	// Geometry selection; 0 selects the current flight geometry.
	GeometryID *int `json:"geometry_id,omitempty"`

	// Classification energy cuts in MeV
	AcdTopEnergyMaxMeV   *int `json:"acd_top_energy_max_mev,omitempty"`
	AcdRow01EnergyMaxMeV *int `json:"acd_row01_energy_max_mev,omitempty"`
	AcdRow2EnergyMaxMeV  *int `json:"acd_row2_energy_max_mev,omitempty"`
	NoTrackEnergyMinMeV  *int `json:"no_track_energy_min_mev,omitempty"`
	SkirtEnergyMaxMeV    *int `json:"skirt_energy_max_mev,omitempty"`

	// Replay params
	ReplayWorkers    *int    `json:"replay_workers,omitempty"`
	ProgressInterval *string `json:"progress_interval,omitempty"` // duration string like "10s"
	Trace            *bool   `json:"trace,omitempty"`
}

// Helper functions to create pointers
func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseTuningConfig(data)
}

// ParseTuningConfig decodes and validates a JSON document.
func ParseTuningConfig(data []byte) (*TuningConfig, error) {
	cfg := EmptyTuningConfig()
	if err := sonnet.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,          // from internal/config/
		"../../../" + DefaultConfigPath,       // from internal/lat/pipeline/
		"../../../../" + DefaultConfigPath,    // from internal/lat/storage/sqlite/
		"../../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.GeometryID != nil && *c.GeometryID < 0 {
		return fmt.Errorf("%w: geometry_id must be non-negative, got %d", ErrInvalidConfig, *c.GeometryID)
	}

	energies := []struct {
		name string
		v    *int
	}{
		{"acd_top_energy_max_mev", c.AcdTopEnergyMaxMeV},
		{"acd_row01_energy_max_mev", c.AcdRow01EnergyMaxMeV},
		{"acd_row2_energy_max_mev", c.AcdRow2EnergyMaxMeV},
		{"no_track_energy_min_mev", c.NoTrackEnergyMinMeV},
		{"skirt_energy_max_mev", c.SkirtEnergyMaxMeV},
	}
	for _, e := range energies {
		if e.v != nil && *e.v < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %d", ErrInvalidConfig, e.name, *e.v)
		}
	}

	if c.ReplayWorkers != nil && (*c.ReplayWorkers < 1 || *c.ReplayWorkers > 256) {
		return fmt.Errorf("%w: replay_workers must be between 1 and 256, got %d", ErrInvalidConfig, *c.ReplayWorkers)
	}

	if c.ProgressInterval != nil && *c.ProgressInterval != "" {
		if _, err := time.ParseDuration(*c.ProgressInterval); err != nil {
			return fmt.Errorf("%w: invalid progress_interval '%s': %v", ErrInvalidConfig, *c.ProgressInterval, err)
		}
	}
	return nil
}

// GetGeometryID returns the geometry_id value or the default.
func (c *TuningConfig) GetGeometryID() int {
	if c.GeometryID == nil {
		return 0
	}
	return *c.GeometryID
}

// GetAcdTopEnergyMaxMeV returns the acd_top_energy_max_mev value or the default.
func (c *TuningConfig) GetAcdTopEnergyMaxMeV() int {
	if c.AcdTopEnergyMaxMeV == nil {
		return 30000
	}
	return *c.AcdTopEnergyMaxMeV
}

// GetAcdRow01EnergyMaxMeV returns the acd_row01_energy_max_mev value or the default.
func (c *TuningConfig) GetAcdRow01EnergyMaxMeV() int {
	if c.AcdRow01EnergyMaxMeV == nil {
		return 10000
	}
	return *c.AcdRow01EnergyMaxMeV
}

// GetAcdRow2EnergyMaxMeV returns the acd_row2_energy_max_mev value or the default.
func (c *TuningConfig) GetAcdRow2EnergyMaxMeV() int {
	if c.AcdRow2EnergyMaxMeV == nil {
		return 30000
	}
	return *c.AcdRow2EnergyMaxMeV
}

// GetNoTrackEnergyMinMeV returns the no_track_energy_min_mev value or the default.
func (c *TuningConfig) GetNoTrackEnergyMinMeV() int {
	if c.NoTrackEnergyMinMeV == nil {
		return 250
	}
	return *c.NoTrackEnergyMinMeV
}

// GetSkirtEnergyMaxMeV returns the skirt_energy_max_mev value or the default.
func (c *TuningConfig) GetSkirtEnergyMaxMeV() int {
	if c.SkirtEnergyMaxMeV == nil {
		return 0
	}
	return *c.SkirtEnergyMaxMeV
}

// GetReplayWorkers returns the replay_workers value or the default.
func (c *TuningConfig) GetReplayWorkers() int {
	if c.ReplayWorkers == nil {
		return 4
	}
	return *c.ReplayWorkers
}

// GetProgressInterval parses and returns the ProgressInterval as a time.Duration.
func (c *TuningConfig) GetProgressInterval() time.Duration {
	if c.ProgressInterval == nil || *c.ProgressInterval == "" {
		return 10 * time.Second // default
	}
	d, err := time.ParseDuration(*c.ProgressInterval)
	if err != nil {
		return 10 * time.Second // default on parse error
	}
	return d
}

// GetTrace returns the trace value or the default.
func (c *TuningConfig) GetTrace() bool {
	if c.Trace == nil {
		return false // default: tracing off
	}
	return *c.Trace
}
