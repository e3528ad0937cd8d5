package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"fcadc/core"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Device)
	assert.Equal(t, 115200, cfg.Serial.Baud)
	assert.Equal(t, 100*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, "naze", cfg.Board)
	assert.Equal(t, core.ActivationRequest{}, cfg.Request())
	assert.Equal(t, 2*time.Second, cfg.Monitor.StaleAfter)
	assert.Equal(t, 3, cfg.Simulate.Rounds)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fcadc.yaml")
	content := `
serial:
  device: /dev/ttyACM0
  read_timeout: 250ms
board: cc3d
features:
  rssi: true
  current_meter: true
monitor:
  max_frames: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Device)
	assert.Equal(t, 115200, cfg.Serial.Baud, "missing fields keep defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, "cc3d", cfg.Board)
	assert.Equal(t, core.ActivationRequest{EnableRSSI: true, EnableCurrentMeter: true}, cfg.Request())
	assert.Equal(t, 10, cfg.Monitor.MaxFrames)
	assert.Equal(t, 2*time.Second, cfg.Monitor.StaleAfter)

	b, err := cfg.BoardRow()
	require.NoError(t, err)
	assert.Equal(t, core.BoardCC3D, b.ID)
	assert.True(t, cfg.BoardExplicit())
}

func TestLoad_BoardDefaultIsNotExplicit(t *testing.T) {
	assert.False(t, Default().BoardExplicit())

	path := filepath.Join(t.TempDir(), "fcadc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial:\n  device: /dev/ttyACM0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "naze", cfg.Board)
	assert.False(t, cfg.BoardExplicit())

	cfg.SetBoard("rp2040")
	assert.True(t, cfg.BoardExplicit())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.SetBoard("olimexino")
	cfg.Features.External1 = true
	cfg.Simulate.Rounds = 7

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Serial.Device = ""
	cfg.Serial.Baud = 0
	cfg.Board = "matek"
	cfg.Simulate.Rounds = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
	assert.ErrorIs(t, err, core.ErrUnknownBoard)

	_, err = cfg.BoardRow()
	assert.ErrorIs(t, err, core.ErrUnknownBoard)
}
