package flashos

import (
	"time"

	"github.com/moffa90/go-eefc/efc"
)

// DeviceType tags the kind of memory a descriptor describes.
type DeviceType uint16

const (
	// OnChip marks flash internal to the microcontroller.
	OnChip DeviceType = 1

	// External marks flash behind an external memory interface.
	External DeviceType = 2
)

// Sector is one entry of the descriptor's sector map.
type Sector struct {
	// Size is the sector size in bytes
	Size uint32

	// Offset is the sector start relative to the device base address
	Offset uint32
}

// Device is the static descriptor a programming host reads to learn the
// flash layout. The host never mutates it.
type Device struct {
	// Version is the descriptor format version
	Version uint16

	// Name identifies the device to the host UI
	Name string

	// Type tags the memory kind
	Type DeviceType

	// BaseAddr is the first mapped flash address
	BaseAddr uint32

	// Size is the total flash size in bytes
	Size uint32

	// PageSize is the programming granularity in bytes
	PageSize uint32

	// Erased is the value of an erased byte
	Erased byte

	// ProgTimeout bounds one page program at the host level
	ProgTimeout time.Duration

	// EraseTimeout bounds one sector erase at the host level
	EraseTimeout time.Duration

	// Sectors lists the sector map in ascending offset order
	Sectors []Sector
}

// NewDevice builds a descriptor from a flash geometry so the sector map
// and the driver's view of the part cannot drift apart.
func NewDevice(name string, geom efc.Geometry) Device {
	d := Device{
		Version:      0x0101,
		Name:         name,
		Type:         OnChip,
		BaseAddr:     geom.Base,
		Size:         geom.Size,
		PageSize:     geom.PageSize,
		Erased:       0xFF,
		ProgTimeout:  300 * time.Millisecond,
		EraseTimeout: 3000 * time.Millisecond,
	}
	for off := uint32(0); off < geom.Size; off += geom.SectorSize {
		d.Sectors = append(d.Sectors, Sector{Size: geom.SectorSize, Offset: off})
	}
	return d
}

// SectorSize returns the size of the sector containing the device-relative
// offset, or 0 when the offset lies outside the device.
func (d *Device) SectorSize(offset uint32) uint32 {
	for i := len(d.Sectors) - 1; i >= 0; i-- {
		if offset >= d.Sectors[i].Offset {
			if offset < d.Sectors[i].Offset+d.Sectors[i].Size {
				return d.Sectors[i].Size
			}
			return 0
		}
	}
	return 0
}

// PIC32CXMTG2MB describes the 2MiB PIC32CX-MT flash: sixteen 128KiB
// sectors starting at 0x01000000.
var PIC32CXMTG2MB = NewDevice("PIC32CXMTG 2MB Flash", efc.PIC32CX2051MTG)
