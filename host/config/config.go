// Package config loads the host tool configuration from YAML.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"fcadc/core"
)

// Config represents the host tool configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Board    string         `yaml:"board"`
	Features FeatureConfig  `yaml:"features"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Simulate SimulateConfig `yaml:"simulate"`

	// boardSet records that Board came from the file or a flag, not Default
	boardSet bool
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// FeatureConfig mirrors the firmware's activation flags.
type FeatureConfig struct {
	RSSI         bool `yaml:"rssi"`
	CurrentMeter bool `yaml:"current_meter"`
	External1    bool `yaml:"external1"`
}

// MonitorConfig controls the telemetry monitor.
type MonitorConfig struct {
	MaxFrames  int           `yaml:"max_frames"`  // 0 = run until interrupted
	StaleAfter time.Duration `yaml:"stale_after"` // warn when no frame arrives for this long
}

// SimulateConfig controls the simulated bring-up.
type SimulateConfig struct {
	Rounds           int `yaml:"rounds"`
	CalibrationPolls int `yaml:"calibration_polls"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Device:      "/dev/ttyUSB0",
			Baud:        115200,
			ReadTimeout: 100 * time.Millisecond,
		},
		Board: core.BoardNaze.String(),
		Monitor: MonitorConfig{
			StaleAfter: 2 * time.Second,
		},
		Simulate: SimulateConfig{
			Rounds:           3,
			CalibrationPolls: 3,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults;
// fields missing from the file keep their default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}

	var keys struct {
		Board *string `yaml:"board"`
	}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}
	cfg.boardSet = keys.Board != nil
	return cfg, nil
}

// SetBoard selects a board explicitly.
func (c *Config) SetBoard(name string) {
	c.Board = name
	c.boardSet = true
}

// BoardExplicit reports whether the board was chosen by the user rather
// than left at its default.
func (c *Config) BoardExplicit() bool {
	return c.boardSet
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var err error
	if c.Serial.Device == "" {
		err = multierr.Append(err, errors.New("serial.device is required"))
	}
	if c.Serial.Baud <= 0 {
		err = multierr.Append(err, errors.Errorf("serial.baud must be positive, got %d", c.Serial.Baud))
	}
	if c.Serial.ReadTimeout < 0 {
		err = multierr.Append(err, errors.New("serial.read_timeout must not be negative"))
	}
	if _, berr := core.BoardByName(c.Board); berr != nil {
		err = multierr.Append(err, errors.Wrapf(berr, "board %q", c.Board))
	}
	if c.Monitor.MaxFrames < 0 {
		err = multierr.Append(err, errors.New("monitor.max_frames must not be negative"))
	}
	if c.Monitor.StaleAfter < 0 {
		err = multierr.Append(err, errors.New("monitor.stale_after must not be negative"))
	}
	if c.Simulate.Rounds <= 0 {
		err = multierr.Append(err, errors.New("simulate.rounds must be positive"))
	}
	if c.Simulate.CalibrationPolls < 0 {
		err = multierr.Append(err, errors.New("simulate.calibration_polls must not be negative"))
	}
	return err
}

// Request converts the feature flags into an activation request.
func (c *Config) Request() core.ActivationRequest {
	return core.ActivationRequest{
		EnableRSSI:         c.Features.RSSI,
		EnableCurrentMeter: c.Features.CurrentMeter,
		EnableExternal1:    c.Features.External1,
	}
}

// BoardRow looks up the configured board.
func (c *Config) BoardRow() (core.Board, error) {
	b, err := core.BoardByName(c.Board)
	if err != nil {
		return core.Board{}, errors.Wrapf(err, "board %q", c.Board)
	}
	return b, nil
}
