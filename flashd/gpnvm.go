package flashd

import "github.com/moffa90/go-eefc/efc"

// IsGPNVMSet reports whether the given GPNVM bit is currently set.
func (d *Driver) IsGPNVMSet(bit uint8) (bool, error) {
	if bit >= efc.MaxGPNVMBits {
		return false, &BitRangeError{Bit: bit}
	}
	if err := d.perform(0, efc.CmdGetGPNVMBit, 0); err != nil {
		return false, err
	}
	bits, err := d.banks[0].Result()
	if err != nil {
		return false, err
	}
	return bits&(1<<bit) != 0, nil
}

// SetGPNVM sets the given GPNVM bit. Setting an already-set bit is a
// no-op: no command cycle is spent.
func (d *Driver) SetGPNVM(bit uint8) error {
	set, err := d.IsGPNVMSet(bit)
	if err != nil || set {
		return err
	}
	d.logDebug("set GPNVM", "bit", bit)
	return d.perform(0, efc.CmdSetGPNVMBit, uint32(bit))
}

// ClearGPNVM clears the given GPNVM bit. Clearing an already-clear bit is
// a no-op: no command cycle is spent.
func (d *Driver) ClearGPNVM(bit uint8) error {
	set, err := d.IsGPNVMSet(bit)
	if err != nil || !set {
		return err
	}
	d.logDebug("clear GPNVM", "bit", bit)
	return d.perform(0, efc.CmdClearGPNVMBit, uint32(bit))
}
