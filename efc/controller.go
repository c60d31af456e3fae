package efc

// Controller gives register-level access to one EEFC instance. It holds no
// driver state; create controllers through flashd or directly with
// NewController for low-level work.
//
// Controllers are not safe for concurrent use: the hardware accepts one
// command in flight per instance and the caller serializes.
type Controller struct {
	bus   Bus
	regs  uint32
	index int
}

// NewController returns a Controller for the register block at regs.
// index is the controller's position in the device's bank order; the IAP
// routine identifies controllers by this index.
func NewController(bus Bus, index int, regs uint32) *Controller {
	if bus == nil {
		panic("bus cannot be nil")
	}
	return &Controller{bus: bus, regs: regs, index: index}
}

// Index returns the controller's bank index.
func (c *Controller) Index() int {
	return c.index
}

// EnableReadyInterrupt sets the flash-ready interrupt enable bit in the
// mode register.
func (c *Controller) EnableReadyInterrupt() error {
	fmr, err := c.bus.Read32(c.regs + RegFMR)
	if err != nil {
		return err
	}
	return c.bus.Write32(c.regs+RegFMR, fmr|FMRFlashReadyInterrupt)
}

// DisableReadyInterrupt clears the flash-ready interrupt enable bit in the
// mode register.
func (c *Controller) DisableReadyInterrupt() error {
	fmr, err := c.bus.Read32(c.regs + RegFMR)
	if err != nil {
		return err
	}
	return c.bus.Write32(c.regs+RegFMR, fmr&^uint32(FMRFlashReadyInterrupt))
}

// SetWaitState rewrites the wait-state field of the mode register,
// preserving the other fields. Values wider than the field are truncated
// by hardware; no validation happens here.
func (c *Controller) SetWaitState(cycles uint8) error {
	fmr, err := c.bus.Read32(c.regs + RegFMR)
	if err != nil {
		return err
	}
	fmr &^= uint32(FMRWaitStateMask)
	fmr |= (uint32(cycles) << FMRWaitStateShift) & FMRWaitStateMask
	return c.bus.Write32(c.regs+RegFMR, fmr)
}

// Status reads the status register.
//
// Reading EEFC_FSR clears the sticky error flags, so a second read after a
// failed command reports ok. Callers that need the error bits must keep the
// first value.
func (c *Controller) Status() (Status, error) {
	fsr, err := c.bus.Read32(c.regs + RegFSR)
	return Status(fsr), err
}

// Result reads the next result word of the last command. Commands like GLB
// and GETD stream several words; each read pops one.
func (c *Controller) Result() (uint32, error) {
	return c.bus.Read32(c.regs + RegFRR)
}

// WriteCommand writes the keyed command word to the command register and
// returns immediately, without waiting for completion. Most callers want an
// Issuer instead; the raw write exists for the unique-ID sequence, which
// must read the flash window between command issue and completion.
func (c *Controller) WriteCommand(cmd Command, arg uint32) error {
	return c.bus.Write32(c.regs+RegFCR, commandWord(cmd, arg))
}

// WaitReady busy-polls the status register until the ready flag is set.
// The wait is unbounded: a stuck controller blocks forever, matching the
// hardware contract. Bounded waits are the host's concern.
func (c *Controller) WaitReady() error {
	for {
		st, err := c.Status()
		if err != nil {
			return err
		}
		if st.Ready() {
			return nil
		}
	}
}

// commandWord packs key, argument and command code into an EEFC_FCR value.
func commandWord(cmd Command, arg uint32) uint32 {
	return KeyPassword<<FCRKeyShift |
		(arg << FCRArgShift & FCRArgMask) |
		uint32(cmd)&FCRCmdMask
}
