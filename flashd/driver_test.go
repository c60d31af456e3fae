package flashd_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-eefc/efc"
	"github.com/moffa90/go-eefc/efctest"
	"github.com/moffa90/go-eefc/flashd"
)

const flashBase = 0x01000000

func newSession(t *testing.T, opts ...flashd.Option) (*efctest.Device, *flashd.Driver) {
	t.Helper()
	dev := efctest.NewDevice(efc.PIC32CX2051MTG)
	drv, err := flashd.New(dev, dev.Geometry(), opts...)
	require.NoError(t, err)
	return dev, drv
}

func pattern(n int, seed byte) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = seed + byte(i)
	}
	return p
}

func TestNewValidatesGeometry(t *testing.T) {
	dev := efctest.NewDevice(efc.PIC32CX2051MTG)

	bad := efc.PIC32CX2051MTG
	bad.Pages = 100 // no longer covers the array

	_, err := flashd.New(dev, bad)
	assert.Error(t, err)

	assert.Panics(t, func() { flashd.New(nil, efc.PIC32CX2051MTG) })
}

func TestNewDisablesReadyInterrupt(t *testing.T) {
	dev := efctest.NewDevice(efc.PIC32CX2051MTG)

	// Pretend target boot code left the interrupt enabled.
	require.NoError(t, dev.Write32(efc.SEFC0Base+efc.RegFMR, efc.FMRFlashReadyInterrupt))

	_, err := flashd.New(dev, dev.Geometry())
	require.NoError(t, err)

	fmr, err := dev.Read32(efc.SEFC0Base + efc.RegFMR)
	require.NoError(t, err)
	assert.Zero(t, fmr&efc.FMRFlashReadyInterrupt)
}

func TestWriteReadBack(t *testing.T) {
	tests := []struct {
		name string
		addr uint32
		size int
	}{
		{name: "single aligned page", addr: flashBase, size: 512},
		{name: "word within page", addr: flashBase + 0x40, size: 4},
		{name: "unaligned start", addr: flashBase + 100, size: 300},
		{name: "spans two pages", addr: flashBase + 512 - 60, size: 200},
		{name: "spans many pages", addr: flashBase + 0x1234, size: 3000},
		{name: "ends at flash end", addr: flashBase + 0x200000 - 512, size: 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, drv := newSession(t)

			data := pattern(tt.size, 0x11)
			require.NoError(t, drv.Write(tt.addr, data))
			assert.Equal(t, data, dev.ReadFlash(tt.addr, uint32(tt.size)))
		})
	}
}

func TestWritePreservesPageNeighbors(t *testing.T) {
	dev, drv := newSession(t)

	// Both boundary pages carry pre-existing content.
	before := pattern(1024, 0x80)
	dev.SeedFlash(flashBase+0x2000, before)

	// Write 400 bytes starting 300 bytes into the first page, ending
	// mid-way through the second.
	data := pattern(400, 0x01)
	require.NoError(t, drv.Write(flashBase+0x2000+300, data))

	got := dev.ReadFlash(flashBase+0x2000, 1024)
	assert.Equal(t, before[:300], got[:300], "bytes before the write window")
	assert.Equal(t, data, got[300:700], "written window")
	assert.Equal(t, before[700:], got[700:], "bytes after the write window")
}

func TestWritePreconditions(t *testing.T) {
	_, drv := newSession(t)

	err := drv.Write(flashBase, nil)
	assert.ErrorIs(t, err, flashd.ErrNilBuffer)

	var rangeErr *efc.AddressRangeError
	err = drv.Write(0x00FF0000, []byte{1})
	assert.ErrorAs(t, err, &rangeErr)

	// Crossing the end of the window fails before any command is issued.
	err = drv.Write(flashBase+0x200000-2, []byte{1, 2, 3, 4})
	assert.ErrorAs(t, err, &rangeErr)

	// Empty slice is a no-op, not an error.
	assert.NoError(t, drv.Write(flashBase, []byte{}))
}

func TestWriteLockedRegionAborts(t *testing.T) {
	dev, drv := newSession(t)

	// Lock the second lock region (pages 16-31).
	_, _, err := drv.Lock(flashBase+16*512, flashBase+32*512)
	require.NoError(t, err)

	// A write spanning the boundary commits page 15, then fails on 16.
	data := pattern(1024, 0x40)
	err = drv.Write(flashBase+15*512, data)

	var cmdErr *efc.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, efc.CmdWritePage, cmdErr.Cmd)
	assert.NotZero(t, cmdErr.Status&efc.StatusLockError)

	// No rollback: the page before the failure stays committed.
	assert.Equal(t, data[:512], dev.ReadFlash(flashBase+15*512, 512))
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, 512), dev.ReadFlash(flashBase+16*512, 512))
}

func TestWriteProgress(t *testing.T) {
	var calls []flashd.Progress
	_, drv := newSession(t, flashd.WithProgress(func(p flashd.Progress) {
		calls = append(calls, p)
	}))

	require.NoError(t, drv.Write(flashBase+100, pattern(1000, 0)))

	require.Len(t, calls, 3) // 1000 bytes from offset 100 touch 3 pages
	last := calls[len(calls)-1]
	assert.Equal(t, 3, last.TotalPages)
	assert.Equal(t, 3, last.PagesWritten)
	assert.Equal(t, 1000, last.BytesWritten)
	assert.Equal(t, 100.0, last.Percentage())
}

func TestEraseSector(t *testing.T) {
	dev, drv := newSession(t)

	fillValue := pattern(0x20000, 0x33)
	dev.SeedFlash(flashBase+0x00000, fillValue)
	dev.SeedFlash(flashBase+0x20000, fillValue)
	dev.SeedFlash(flashBase+0x40000, fillValue)

	// Address inside the second sector erases exactly that sector.
	require.NoError(t, drv.EraseSector(flashBase+0x20000+0x1234))

	assert.Equal(t, fillValue, dev.ReadFlash(flashBase, 0x20000), "sector 0 untouched")
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, 0x20000), dev.ReadFlash(flashBase+0x20000, 0x20000))
	assert.Equal(t, fillValue, dev.ReadFlash(flashBase+0x40000, 0x20000), "sector 2 untouched")
}

func TestEraseAll(t *testing.T) {
	dev, drv := newSession(t)

	dev.SeedFlash(flashBase+0x1FF000, pattern(512, 0x55))
	require.NoError(t, drv.Erase(flashBase))

	assert.Equal(t, bytes.Repeat([]byte{0xFF}, 512), dev.ReadFlash(flashBase+0x1FF000, 512))
}

func TestIAPCommandPath(t *testing.T) {
	dev := efctest.NewDevice(efc.PIC32CX2051MTG)
	drv, err := flashd.New(dev, dev.Geometry(), flashd.WithIAP(dev.Call))
	require.NoError(t, err)

	require.NoError(t, drv.Write(flashBase, pattern(512, 0)))

	require.NotZero(t, dev.CommandCount(efc.CmdWritePage))
	for _, rec := range dev.Commands {
		if rec.Cmd == efc.CmdWritePage {
			assert.True(t, rec.IAP, "write page not routed through ROM")
		}
	}
}

func TestReadDescriptor(t *testing.T) {
	_, drv := newSession(t)

	desc, err := drv.ReadDescriptor()
	require.NoError(t, err)

	geom := drv.Geometry()
	assert.Equal(t, geom.Size, desc[1])
	assert.Equal(t, geom.PageSize, desc[2])
}

func TestReadUniqueID(t *testing.T) {
	dev, drv := newSession(t)

	var want [efc.UniqueIDSize]byte
	copy(want[:], pattern(efc.UniqueIDSize, 0xC0))
	dev.SetUniqueID(want)

	id, err := drv.ReadUniqueID()
	require.NoError(t, err)
	assert.Equal(t, want, id)

	// The sequence is start, then stop; flash content is readable again.
	assert.Equal(t, 1, dev.CommandCount(efc.CmdStartUniqueID))
	assert.Equal(t, 1, dev.CommandCount(efc.CmdStopUniqueID))
	v, err := dev.Read32(flashBase)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFFF), v)
}

func TestWriteLogsThroughLogger(t *testing.T) {
	logger := &captureLogger{}
	_, drv := newSession(t, flashd.WithLogger(logger))

	require.NoError(t, drv.Write(flashBase, pattern(512, 0)))
	assert.NotEmpty(t, logger.info)
	assert.NotEmpty(t, logger.debug)
}

type captureLogger struct {
	debug []string
	info  []string
	errs  []string
}

func (l *captureLogger) Debug(msg string, kv ...interface{}) { l.debug = append(l.debug, msg) }
func (l *captureLogger) Info(msg string, kv ...interface{})  { l.info = append(l.info, msg) }
func (l *captureLogger) Error(msg string, kv ...interface{}) { l.errs = append(l.errs, msg) }

func TestErrorsFromForcedStatus(t *testing.T) {
	dev, drv := newSession(t)
	dev.ForceError(efc.CmdEraseSector, efc.StatusFlashError)

	err := drv.EraseSector(flashBase)
	var cmdErr *efc.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, efc.StatusFlashError, cmdErr.Status)
}
