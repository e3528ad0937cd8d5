package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"fcadc/core"
	"fcadc/host/config"
	"fcadc/telemetry"
)

// bufferPort serves one buffer and then times out
type bufferPort struct {
	bytes.Buffer
}

func (p *bufferPort) Close() error { return nil }
func (p *bufferPort) Flush() error { return nil }

func cc3dFrame(t *testing.T) []byte {
	t.Helper()
	out := telemetry.NewScratchOutput()
	require.NoError(t, telemetry.EncodeSnapshot(out, 0, core.BoardCC3D,
		[]core.Sample{{Channel: core.ChannelBattery, Value: 1}}))
	return append([]byte(nil), out.Result()...)
}

func mismatches(t *testing.T, cfg *config.Config) int {
	t.Helper()
	obs, logs := observer.New(zapcore.WarnLevel)
	e := &env{cfg: cfg, logger: zap.New(obs).Sugar()}

	m, err := e.newMonitor()
	require.NoError(t, err)
	port := &bufferPort{}
	port.Write(cc3dFrame(t))
	m.Attach(port)

	snaps, err := m.Poll()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	return logs.FilterMessage("board mismatch").Len()
}

func TestMonitorIgnoresDefaultBoard(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 0, mismatches(t, cfg))
}

func TestMonitorExpectsChosenBoard(t *testing.T) {
	cfg := config.Default()
	cfg.SetBoard("naze")
	assert.Equal(t, 1, mismatches(t, cfg))

	cfg.SetBoard("cc3d")
	assert.Equal(t, 0, mismatches(t, cfg))
}

func TestMonitorRejectsUnknownChosenBoard(t *testing.T) {
	cfg := config.Default()
	cfg.SetBoard("nope")
	e := &env{cfg: cfg, logger: zap.NewNop().Sugar()}

	_, err := e.newMonitor()
	assert.ErrorIs(t, err, core.ErrUnknownBoard)
}
