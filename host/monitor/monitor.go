// Package monitor reads sample snapshots streamed by the firmware.
package monitor

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"fcadc/core"
	"fcadc/host/serial"
	"fcadc/telemetry"
)

// ErrNotConnected is returned when reading before Connect or Attach.
var ErrNotConnected = errors.New("monitor not connected")

const readChunk = 64

// Monitor is the host end of the telemetry link
type Monitor struct {
	port    serial.Port
	decoder *telemetry.Decoder
	logger  *zap.SugaredLogger

	// Board the firmware is expected to report; nil accepts any
	expected *core.Board

	staleAfter time.Duration
	now        func() time.Time

	last      telemetry.Snapshot
	lastAt    time.Time
	haveFrame bool
	stale     bool
}

// New creates a Monitor that is not yet connected
func New(logger *zap.SugaredLogger) *Monitor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Monitor{
		decoder: telemetry.NewDecoder(),
		logger:  logger,
		now:     time.Now,
	}
}

// ExpectBoard makes the monitor warn when frames report a different board.
func (m *Monitor) ExpectBoard(b core.Board) {
	m.expected = &b
}

// SetStaleAfter sets how long the link may stay silent before a warning. Zero disables it.
func (m *Monitor) SetStaleAfter(d time.Duration) {
	m.staleAfter = d
}

// Connect opens device with the default telemetry settings
func (m *Monitor) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig opens a serial port with a custom config
func (m *Monitor) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return errors.Wrap(err, "flush serial port")
	}
	m.Attach(port)
	m.logger.Infow("connected", "device", cfg.Device, "baud", cfg.Baud)
	return nil
}

// Attach uses an already open port
func (m *Monitor) Attach(port serial.Port) {
	m.port = port
	m.decoder = telemetry.NewDecoder()
	m.haveFrame = false
	m.stale = false
	m.lastAt = m.now()
}

// Close closes the port
func (m *Monitor) Close() error {
	if m.port == nil {
		return nil
	}
	err := m.port.Close()
	m.port = nil
	return err
}

// Poll performs one read and returns the snapshots it completed.
// A read timeout is not an error; it yields no snapshots.
func (m *Monitor) Poll() ([]telemetry.Snapshot, error) {
	if m.port == nil {
		return nil, ErrNotConnected
	}

	var buf [readChunk]byte
	n, err := m.port.Read(buf[:])
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "read telemetry")
	}

	snaps := m.decoder.Feed(buf[:n])
	for _, s := range snaps {
		m.observe(s)
	}
	if len(snaps) == 0 {
		m.checkStale()
	}
	return snaps, nil
}

func (m *Monitor) observe(s telemetry.Snapshot) {
	if m.stale {
		m.logger.Infow("telemetry resumed", "silent_for", m.now().Sub(m.lastAt).String())
		m.stale = false
	}
	if m.expected != nil && s.Board != m.expected.ID {
		m.logger.Warnw("board mismatch", "expected", m.expected.Name, "reported", s.Board.String())
	}
	m.last = s
	m.lastAt = m.now()
	m.haveFrame = true
	m.logger.Debugw("snapshot", "frame", FormatSnapshot(s))
}

func (m *Monitor) checkStale() {
	if m.staleAfter <= 0 || m.stale {
		return
	}
	if silent := m.now().Sub(m.lastAt); silent > m.staleAfter {
		m.stale = true
		m.logger.Warnw("telemetry stale", "silent_for", silent.String())
	}
}

// Run polls until ctx is done or maxFrames snapshots were handled (zero means no limit).
func (m *Monitor) Run(ctx context.Context, maxFrames int, handle func(telemetry.Snapshot)) error {
	handled := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		snaps, err := m.Poll()
		if err != nil {
			return err
		}
		for _, s := range snaps {
			if handle != nil {
				handle(s)
			}
			handled++
			if maxFrames > 0 && handled >= maxFrames {
				return nil
			}
		}
	}
}

// Last returns the most recent snapshot
func (m *Monitor) Last() (telemetry.Snapshot, bool) {
	return m.last, m.haveFrame
}

// Stats returns the decoder counters
func (m *Monitor) Stats() (frames, crcErrors, badFrames, droppedBytes uint32) {
	return m.decoder.Frames, m.decoder.CRCErrors, m.decoder.BadFrames, m.decoder.DroppedBytes
}

// FormatSnapshot renders a snapshot as "seq=N board=NAME channel=value ...".
func FormatSnapshot(s telemetry.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("seq=")
	sb.WriteString(strconv.Itoa(int(s.Seq)))
	sb.WriteString(" board=")
	sb.WriteString(s.Board.String())
	for _, smp := range s.Samples {
		sb.WriteByte(' ')
		sb.WriteString(smp.Channel.String())
		sb.WriteByte('=')
		sb.WriteString(strconv.Itoa(int(smp.Value)))
	}
	return sb.String()
}
