package efc

import "errors"

// ErrNoCallFunc is returned by the IAP issuer when the bus cannot execute
// target code.
var ErrNoCallFunc = errors.New("efc: IAP issue requires a CallFunc")

// Issuer is the strategy for delivering a command to a controller and
// awaiting its completion. It returns the error flags the controller
// reported; a zero Status means the command succeeded.
//
// Two implementations exist: Direct writes the command register and polls,
// IAP calls the routine resident in boot ROM. IAP is the path to use when
// the CPU executes from the flash bank being modified.
type Issuer interface {
	Issue(c *Controller, cmd Command, arg uint32) (Status, error)
}

// Direct issues commands by writing the keyed command word to EEFC_FCR and
// busy-polling EEFC_FSR until the ready flag rises. The poll is unbounded.
type Direct struct{}

// Issue implements Issuer.
func (Direct) Issue(c *Controller, cmd Command, arg uint32) (Status, error) {
	if err := c.WriteCommand(cmd, arg); err != nil {
		return 0, err
	}
	for {
		st, err := c.Status()
		if err != nil {
			return 0, err
		}
		if st.Ready() {
			return st.Errors(), nil
		}
	}
}

// IAP issues commands through the In-Application Programming routine in
// boot ROM. The routine waits for completion internally, so no polling
// happens here; the error flags are read from the status register
// afterwards.
type IAP struct {
	// Call executes target code; required.
	Call CallFunc

	// Vector is the address holding the ROM routine's entry pointer.
	// Zero means IAPVectorAddr.
	Vector uint32
}

// Issue implements Issuer.
func (ia IAP) Issue(c *Controller, cmd Command, arg uint32) (Status, error) {
	if ia.Call == nil {
		return 0, ErrNoCallFunc
	}
	vector := ia.Vector
	if vector == 0 {
		vector = IAPVectorAddr
	}
	entry, err := c.bus.Read32(vector)
	if err != nil {
		return 0, err
	}
	if _, err := ia.Call(entry, uint32(c.index), commandWord(cmd, arg)); err != nil {
		return 0, err
	}
	st, err := c.Status()
	if err != nil {
		return 0, err
	}
	return st.Errors(), nil
}
