package flashd

import (
	"fmt"

	"github.com/moffa90/go-eefc/efc"
)

// Driver is a flash programming session over one target. It replaces the
// classic static page buffer and mode flag with explicit session state; a
// single Driver at a time may drive a given target.
//
// Driver is NOT safe for concurrent use.
type Driver struct {
	bus    efc.Bus
	geom   efc.Geometry
	banks  []*efc.Controller
	issuer efc.Issuer
	page   []byte
	config Config
}

// New creates a Driver for the target behind bus with the given flash
// geometry. The constructor disables the flash-ready interrupt on every
// controller (completion is polled, not interrupt-driven) and applies the
// configured wait states.
//
// Example:
//
//	drv, err := flashd.New(bus, efc.PIC32CX2051MTG,
//	    flashd.WithLogger(myLogger),
//	    flashd.WithWaitState(6),
//	)
func New(bus efc.Bus, geom efc.Geometry, opts ...Option) (*Driver, error) {
	if bus == nil {
		panic("bus cannot be nil")
	}
	if err := validateGeometry(&geom); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Driver{
		bus:    bus,
		geom:   geom,
		page:   make([]byte, geom.PageSize),
		config: cfg,
		issuer: efc.Direct{},
	}
	if cfg.IAPCall != nil {
		d.issuer = efc.IAP{Call: cfg.IAPCall}
	}

	for i, bank := range geom.Banks {
		c := efc.NewController(bus, i, bank.Regs)
		if err := c.DisableReadyInterrupt(); err != nil {
			return nil, fmt.Errorf("configure controller %d: %w", i, err)
		}
		if cfg.hasWaitState {
			if err := c.SetWaitState(cfg.WaitState); err != nil {
				return nil, fmt.Errorf("configure controller %d: %w", i, err)
			}
		}
		d.banks = append(d.banks, c)
	}

	return d, nil
}

// Geometry returns the flash geometry the session was created with.
func (d *Driver) Geometry() efc.Geometry {
	return d.geom
}

// Erase erases the entire flash array owned by the controller containing
// addr.
func (d *Driver) Erase(addr uint32) error {
	bank, _, _, err := efc.Translate(&d.geom, addr)
	if err != nil {
		return err
	}
	d.logDebug("erase all", "bank", bank)
	return d.perform(bank, efc.CmdEraseAll, 0)
}

// EraseSector erases the sector containing addr.
func (d *Driver) EraseSector(addr uint32) error {
	bank, page, _, err := efc.Translate(&d.geom, addr)
	if err != nil {
		return err
	}
	d.logDebug("erase sector", "bank", bank, "page", page)
	return d.perform(bank, efc.CmdEraseSector, page)
}

// ReadDescriptor issues the get-descriptor command and returns the first
// four result words (flash ID, size, page size, plane count).
func (d *Driver) ReadDescriptor() ([efc.DescriptorWords]uint32, error) {
	var desc [efc.DescriptorWords]uint32
	c := d.banks[0]

	if err := c.WaitReady(); err != nil {
		return desc, err
	}
	if err := c.WriteCommand(efc.CmdGetDescriptor, 0); err != nil {
		return desc, err
	}
	if err := c.WaitReady(); err != nil {
		return desc, err
	}
	for i := range desc {
		v, err := c.Result()
		if err != nil {
			return desc, err
		}
		desc[i] = v
	}
	return desc, nil
}

// perform issues a command and converts nonzero status flags into a
// *efc.CommandError.
func (d *Driver) perform(bank int, cmd efc.Command, arg uint32) error {
	st, err := d.issuer.Issue(d.banks[bank], cmd, arg)
	if err != nil {
		return err
	}
	if st != 0 {
		return &efc.CommandError{Cmd: cmd, Arg: arg, Status: st}
	}
	return nil
}

// checkRange validates that [addr, addr+size) lies within the flash window.
func (d *Driver) checkRange(addr, size uint32) error {
	end := addr + size
	if !d.geom.Contains(addr) || end < addr || end > d.geom.Base+d.geom.Size {
		return &efc.AddressRangeError{Addr: addr, Base: d.geom.Base, Size: d.geom.Size}
	}
	return nil
}

func validateGeometry(g *efc.Geometry) error {
	switch {
	case len(g.Banks) == 0:
		return fmt.Errorf("flashd: geometry has no controllers")
	case g.PageSize == 0 || g.PageSize%4 != 0:
		return fmt.Errorf("flashd: page size %d is not a positive word multiple", g.PageSize)
	case g.Pages*g.PageSize != g.Size:
		return fmt.Errorf("flashd: %d pages of %d bytes do not cover 0x%X bytes",
			g.Pages, g.PageSize, g.Size)
	case g.LockRegionSize == 0 || g.LockRegionSize%g.PageSize != 0:
		return fmt.Errorf("flashd: lock region size %d is not a page multiple", g.LockRegionSize)
	case g.Size%uint32(len(g.Banks)) != 0:
		return fmt.Errorf("flashd: flash size 0x%X does not split over %d controllers",
			g.Size, len(g.Banks))
	}
	return nil
}

func (d *Driver) logDebug(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (d *Driver) logInfo(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Info(msg, keysAndValues...)
	}
}
