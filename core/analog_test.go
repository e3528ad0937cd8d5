package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fcadc/core"
	"fcadc/sim"
)

func TestSampleBufferReads(t *testing.T) {
	b, _ := core.LookupBoard(core.BoardNaze)
	p := sim.New()
	a, err := core.StartAnalog(p, b, core.ActivationRequest{EnableRSSI: true, EnableCurrentMeter: true})
	require.NoError(t, err)

	require.True(t, p.RunRound())

	v, err := a.Read(core.ChannelBattery)
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultGenerator(4, 0), v)

	v, err = a.Read(core.ChannelRSSI)
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultGenerator(1, 0), v)

	v, err = a.Read(core.ChannelCurrent)
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultGenerator(9, 0), v)

	// the next round overwrites in place
	require.True(t, p.RunRound())
	v, _ = a.Read(core.ChannelCurrent)
	assert.Equal(t, sim.DefaultGenerator(9, 1), v)

	slot, ok := a.Buffer().Slot(core.ChannelCurrent)
	assert.True(t, ok)
	assert.Equal(t, 2, slot)
}

func TestReadDisabledChannel(t *testing.T) {
	b, _ := core.LookupBoard(core.BoardNaze)
	p := sim.New()
	p.Generator = func(core.PhysicalInput, uint32) uint16 { return 0xFFFF }
	a, err := core.StartAnalog(p, b, core.ActivationRequest{EnableRSSI: true})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p.RunRound()
		_, err = a.Read(core.ChannelCurrent)
		assert.ErrorIs(t, err, core.ErrChannelNotEnabled)
		_, err = a.Read(core.ChannelExternal1)
		assert.ErrorIs(t, err, core.ErrChannelNotEnabled)
	}
	_, err = a.Read(core.LogicalChannel(42))
	assert.ErrorIs(t, err, core.ErrChannelNotEnabled)

	// other channels are unaffected
	v, err := a.Read(core.ChannelRSSI)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xFFFF), v)

	assert.False(t, a.Config(core.ChannelCurrent).Enabled)
	assert.True(t, a.Config(core.ChannelRSSI).Enabled)
	assert.Equal(t, core.ChannelCurrent, a.Config(core.ChannelCurrent).Channel)
}

func TestSnapshotInSlotOrder(t *testing.T) {
	b, _ := core.LookupBoard(core.BoardRP2040)
	p := sim.New()
	a, err := core.StartAnalog(p, b, core.ActivationRequest{EnableExternal1: true, EnableCurrentMeter: true})
	require.NoError(t, err)
	p.RunRound()

	snap := a.Snapshot(nil)
	assert.Equal(t, []core.Sample{
		{Channel: core.ChannelBattery, Value: sim.DefaultGenerator(0, 0)},
		{Channel: core.ChannelExternal1, Value: sim.DefaultGenerator(2, 0)},
		{Channel: core.ChannelCurrent, Value: sim.DefaultGenerator(3, 0)},
	}, snap)
	assert.Equal(t, core.BoardRP2040, a.Board().ID)
	assert.Len(t, a.Channels(), 3)
}

func TestSingleChannelBufferDoesNotAdvance(t *testing.T) {
	b, _ := core.LookupBoard(core.BoardCC3D)
	p := sim.New()
	a, err := core.StartAnalog(p, b, core.ActivationRequest{})
	require.NoError(t, err)

	for i := uint32(0); i < 5; i++ {
		p.RunRound()
		v, err := a.Read(core.ChannelBattery)
		require.NoError(t, err)
		assert.Equal(t, sim.DefaultGenerator(0, i), v)
	}
}

func TestStartAnalogFault(t *testing.T) {
	b, _ := core.LookupBoard(core.BoardNaze)
	p := sim.New()
	p.FailOn(sim.OpConfigureDMA, nil)
	a, err := core.StartAnalog(p, b, core.ActivationRequest{})
	assert.Nil(t, a)
	assert.True(t, core.IsHardwareFault(err))
}

func TestInitAnalogGlobal(t *testing.T) {
	core.ResetAnalog()
	defer core.ResetAnalog()

	_, err := core.ReadAnalog(core.ChannelBattery)
	assert.ErrorIs(t, err, core.ErrChannelNotEnabled)
	assert.Nil(t, core.AnalogChannels())
	assert.Nil(t, core.GlobalAnalog())

	p := sim.New()
	core.SetADCDriver(p)
	require.NoError(t, core.InitAnalog(core.ActivationRequest{EnableRSSI: true}))
	assert.Same(t, p, core.MustADC())

	p.RunRound()
	v, err := core.ReadAnalog(core.ChannelBattery)
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultGenerator(core.SelectedBoard.Inputs[core.ChannelBattery].Input, 0), v)
	assert.NotEmpty(t, core.AnalogChannels())

	assert.ErrorIs(t, core.InitAnalog(core.ActivationRequest{}), core.ErrAlreadyStarted)
	assert.NoError(t, core.AnalogFault())
}

func TestInitAnalogFaultIsTerminal(t *testing.T) {
	core.ResetAnalog()
	defer core.ResetAnalog()

	p := sim.New()
	p.FailOn(sim.OpStartConversion, nil)
	core.SetADCDriver(p)

	err := core.InitAnalog(core.ActivationRequest{})
	require.True(t, core.IsHardwareFault(err))
	assert.ErrorIs(t, core.AnalogFault(), sim.ErrInjected)

	// the second call must not reprogram the peripheral
	assert.ErrorIs(t, core.InitAnalog(core.ActivationRequest{}), core.ErrAlreadyStarted)
	assert.Len(t, p.CallsOf(sim.OpConfigureDMA), 1)
	assert.Len(t, p.CallsOf(sim.OpStartConversion), 1)
	assert.Nil(t, core.GlobalAnalog())

	_, err = core.ReadAnalog(core.ChannelBattery)
	assert.ErrorIs(t, err, core.ErrChannelNotEnabled)
}

func TestMustADCPanicsWithoutDriver(t *testing.T) {
	core.SetADCDriver(nil)
	assert.Panics(t, func() { core.MustADC() })
}
