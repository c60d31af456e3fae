package flashd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-eefc/efc"
	"github.com/moffa90/go-eefc/flashd"
)

func TestGPNVMSetAndClear(t *testing.T) {
	dev, drv := newSession(t)

	set, err := drv.IsGPNVMSet(5)
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, drv.SetGPNVM(5))
	assert.True(t, dev.GPNVM(5))

	set, err = drv.IsGPNVMSet(5)
	require.NoError(t, err)
	assert.True(t, set)

	require.NoError(t, drv.ClearGPNVM(5))
	assert.False(t, dev.GPNVM(5))
}

func TestGPNVMIdempotent(t *testing.T) {
	dev, drv := newSession(t)

	// The second set sees the bit already high and issues no command.
	require.NoError(t, drv.SetGPNVM(6))
	require.NoError(t, drv.SetGPNVM(6))
	assert.Equal(t, 1, dev.CommandCount(efc.CmdSetGPNVMBit))

	// Clearing an already-clear bit is likewise free.
	require.NoError(t, drv.ClearGPNVM(3))
	assert.Zero(t, dev.CommandCount(efc.CmdClearGPNVMBit))
}

func TestGPNVMBitRange(t *testing.T) {
	_, drv := newSession(t)

	var bitErr *flashd.BitRangeError

	_, err := drv.IsGPNVMSet(efc.MaxGPNVMBits)
	require.ErrorAs(t, err, &bitErr)
	assert.Equal(t, uint8(efc.MaxGPNVMBits), bitErr.Bit)

	assert.ErrorAs(t, drv.SetGPNVM(200), &bitErr)
	assert.ErrorAs(t, drv.ClearGPNVM(200), &bitErr)
}
