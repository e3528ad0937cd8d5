package monitor

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"fcadc/core"
	"fcadc/telemetry"
)

// pipePort replays chunks, then reports EOF (a read timeout on a real port)
type pipePort struct {
	chunks [][]byte
	onIdle func()
	closed bool
}

func (p *pipePort) Read(b []byte) (int, error) {
	if len(p.chunks) == 0 {
		if p.onIdle != nil {
			p.onIdle()
		}
		return 0, io.EOF
	}
	n := copy(b, p.chunks[0])
	p.chunks[0] = p.chunks[0][n:]
	if len(p.chunks[0]) == 0 {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *pipePort) Write(b []byte) (int, error) { return len(b), nil }

func (p *pipePort) Close() error {
	p.closed = true
	return nil
}

func (p *pipePort) Flush() error { return nil }

func frame(t *testing.T, seq uint8, board core.BoardID, samples ...core.Sample) []byte {
	t.Helper()
	out := telemetry.NewScratchOutput()
	require.NoError(t, telemetry.EncodeSnapshot(out, seq, board, samples))
	return append([]byte(nil), out.Result()...)
}

func battery(v uint16) core.Sample {
	return core.Sample{Channel: core.ChannelBattery, Value: v}
}

func observed() (*zap.SugaredLogger, *observer.ObservedLogs) {
	obs, logs := observer.New(zapcore.DebugLevel)
	return zap.New(obs).Sugar(), logs
}

func TestPollNotConnected(t *testing.T) {
	m := New(nil)
	_, err := m.Poll()
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestRunStopsAfterMaxFrames(t *testing.T) {
	port := &pipePort{chunks: [][]byte{
		frame(t, 1, core.BoardCC3D, battery(100)),
		frame(t, 2, core.BoardCC3D, battery(101)),
		frame(t, 3, core.BoardCC3D, battery(102)),
	}}
	m := New(nil)
	m.Attach(port)

	var got []uint16
	err := m.Run(context.Background(), 2, func(s telemetry.Snapshot) {
		v, ok := s.Value(core.ChannelBattery)
		require.True(t, ok)
		got = append(got, v)
	})
	require.NoError(t, err)
	assert.Equal(t, []uint16{100, 101}, got)

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, uint8(2), last.Seq)

	require.NoError(t, m.Close())
	assert.True(t, port.closed)
}

func TestRunUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	data := append(frame(t, 5, core.BoardNaze, battery(7)), frame(t, 6, core.BoardNaze, battery(8))...)
	// split mid-frame to exercise reassembly
	port := &pipePort{chunks: [][]byte{data[:5], data[5:]}, onIdle: cancel}
	m := New(nil)
	m.Attach(port)

	count := 0
	require.NoError(t, m.Run(ctx, 0, func(telemetry.Snapshot) { count++ }))
	assert.Equal(t, 2, count)

	frames, crcErrors, badFrames, droppedBytes := m.Stats()
	assert.Equal(t, uint32(2), frames)
	assert.Zero(t, crcErrors)
	assert.Zero(t, badFrames)
	assert.Zero(t, droppedBytes)
}

func TestBoardMismatchWarns(t *testing.T) {
	logger, logs := observed()
	naze, err := core.LookupBoard(core.BoardNaze)
	require.NoError(t, err)

	m := New(logger)
	m.ExpectBoard(naze)
	m.Attach(&pipePort{chunks: [][]byte{frame(t, 0, core.BoardCC3D, battery(1))}})

	snaps, err := m.Poll()
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	warnings := logs.FilterMessage("board mismatch").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "naze", warnings[0].ContextMap()["expected"])
	assert.Equal(t, "cc3d", warnings[0].ContextMap()["reported"])
}

func TestStaleLinkWarnsOnce(t *testing.T) {
	logger, logs := observed()
	clock := time.Unix(1000, 0)

	m := New(logger)
	m.now = func() time.Time { return clock }
	m.SetStaleAfter(time.Second)
	port := &pipePort{}
	m.Attach(port)

	clock = clock.Add(500 * time.Millisecond)
	_, err := m.Poll()
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage("telemetry stale").Len())

	clock = clock.Add(time.Second)
	_, err = m.Poll()
	require.NoError(t, err)
	_, err = m.Poll()
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("telemetry stale").Len())

	port.chunks = [][]byte{frame(t, 9, core.BoardNaze, battery(3))}
	_, err = m.Poll()
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("telemetry resumed").Len())
}

func TestFormatSnapshot(t *testing.T) {
	s := telemetry.Snapshot{
		Seq:   4,
		Board: core.BoardGenericF1,
		Samples: []core.Sample{
			battery(1620),
			{Channel: core.ChannelCurrent, Value: 12},
		},
	}
	assert.Equal(t, "seq=4 board=generic-f1 battery=1620 current=12", FormatSnapshot(s))
}
