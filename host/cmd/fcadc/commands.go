package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"fcadc/core"
	"fcadc/host/monitor"
	"fcadc/host/serial"
	"fcadc/sim"
	"fcadc/telemetry"
)

// applyFlags lets command line flags override the loaded configuration.
func (e *env) applyFlags(c *cli.Context) error {
	if c.IsSet(flagBoard) {
		e.cfg.SetBoard(c.String(flagBoard))
	}
	if c.IsSet(flagRSSI) {
		e.cfg.Features.RSSI = c.Bool(flagRSSI)
	}
	if c.IsSet(flagCurrent) {
		e.cfg.Features.CurrentMeter = c.Bool(flagCurrent)
	}
	if c.IsSet(flagExternal1) {
		e.cfg.Features.External1 = c.Bool(flagExternal1)
	}
	if c.IsSet(flagRounds) {
		e.cfg.Simulate.Rounds = c.Int(flagRounds)
	}
	if c.IsSet(flagDevice) {
		e.cfg.Serial.Device = c.String(flagDevice)
	}
	if c.IsSet(flagBaud) {
		e.cfg.Serial.Baud = c.Int(flagBaud)
	}
	if c.IsSet(flagFrames) {
		e.cfg.Monitor.MaxFrames = c.Int(flagFrames)
	}
	return errors.Wrap(e.cfg.Validate(), "invalid configuration")
}

func wiring(b core.Board) string {
	s := ""
	for ch := core.LogicalChannel(0); ch < core.ChannelCount; ch++ {
		if ch > 0 {
			s += " "
		}
		m := b.Inputs[ch]
		if m == nil {
			s += ch.String() + "=-"
			continue
		}
		s += ch.String() + "=" + m.Pin.String() + "/" + m.Input.String()
	}
	return s
}

func (e *env) boardsAction(c *cli.Context) error {
	for _, b := range core.Boards() {
		fmt.Fprintf(c.App.Writer, "%-11s %s\n", b.Name, wiring(b))
	}
	return nil
}

func (e *env) planAction(c *cli.Context) error {
	if err := e.applyFlags(c); err != nil {
		return err
	}
	board, err := e.cfg.BoardRow()
	if err != nil {
		return err
	}
	req := e.cfg.Request()

	channels, err := core.Resolve(board, req)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", board.Name)
	}

	w := c.App.Writer
	scan := "disabled"
	if core.ScanRequired(channels) {
		scan = "enabled"
	}
	fmt.Fprintf(w, "board %s, %d channel(s), scan %s\n", board.Name, len(channels), scan)
	for _, ch := range channels {
		fmt.Fprintf(w, "  slot %d  rank %d  %-9s %-5s %s\n", ch.Slot, ch.Slot+1, ch.Channel, ch.Pin, ch.Input)
	}
	for _, ch := range core.Skipped(board, req) {
		fmt.Fprintf(w, "  skipped %s: not wired on %s\n", ch, board.Name)
	}
	return nil
}

func (e *env) simulateAction(c *cli.Context) error {
	if err := e.applyFlags(c); err != nil {
		return err
	}
	board, err := e.cfg.BoardRow()
	if err != nil {
		return err
	}
	w := c.App.Writer

	core.SetDebugWriter(func(s string) { e.logger.Debug(s) })
	core.SetDebugEnabled(true)
	core.ClearTrace()
	defer core.SetDebugEnabled(false)

	p := sim.New()
	p.CalibrationPolls = e.cfg.Simulate.CalibrationPolls

	dumpTrace := func() {
		if !c.Bool(flagTrace) {
			return
		}
		for _, call := range p.Calls() {
			fmt.Fprintln(w, "[CALL] "+call.String())
		}
		core.SetDebugWriter(func(s string) { fmt.Fprintln(w, s) })
		core.DumpTrace()
	}

	a, err := core.StartAnalog(p, board, e.cfg.Request())
	if err != nil {
		dumpTrace()
		return errors.Wrap(err, "bring-up")
	}
	e.logger.Infow("converter running", "board", board.Name, "channels", len(a.Channels()))

	// Each round goes through the same framing the firmware uses on the wire.
	out := telemetry.NewScratchOutput()
	dec := telemetry.NewDecoder()
	var samples []core.Sample
	for r := 0; r < e.cfg.Simulate.Rounds; r++ {
		p.RunRound()
		samples = a.Snapshot(samples[:0])

		out.Reset()
		if err := telemetry.EncodeSnapshot(out, uint8(r), board.ID, samples); err != nil {
			return errors.Wrap(err, "encode snapshot")
		}
		for _, s := range dec.Feed(out.Result()) {
			fmt.Fprintln(w, monitor.FormatSnapshot(s))
		}
	}

	dumpTrace()
	return nil
}

// newMonitor builds a monitor from the configuration. A board is only
// enforced when the user picked one.
func (e *env) newMonitor() (*monitor.Monitor, error) {
	m := monitor.New(e.logger)
	m.SetStaleAfter(e.cfg.Monitor.StaleAfter)
	if e.cfg.BoardExplicit() {
		board, err := e.cfg.BoardRow()
		if err != nil {
			return nil, err
		}
		m.ExpectBoard(board)
	}
	return m, nil
}

func (e *env) monitorAction(c *cli.Context) error {
	if err := e.applyFlags(c); err != nil {
		return err
	}

	m, err := e.newMonitor()
	if err != nil {
		return err
	}
	if err := m.ConnectWithConfig(&serial.Config{
		Device:      e.cfg.Serial.Device,
		Baud:        e.cfg.Serial.Baud,
		ReadTimeout: e.cfg.Serial.ReadTimeout,
	}); err != nil {
		return err
	}
	defer m.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	w := c.App.Writer
	err = m.Run(ctx, e.cfg.Monitor.MaxFrames, func(s telemetry.Snapshot) {
		fmt.Fprintln(w, monitor.FormatSnapshot(s))
	})

	frames, crcErrors, badFrames, droppedBytes := m.Stats()
	e.logger.Infow("monitor stopped",
		"frames", frames,
		"crc_errors", crcErrors,
		"bad_frames", badFrames,
		"dropped_bytes", droppedBytes,
	)
	return err
}
