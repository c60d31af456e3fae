package flashd

import "github.com/moffa90/go-eefc/efc"

// ReadUniqueID reads the 128-bit factory-programmed unique identifier.
//
// The sequence issues the start-read command, reads the four words the
// controller maps over the start of the flash window, then issues the
// stop-read command and waits for the ready flag to rise again. While the
// mode is active the flash array itself is unreadable, so on-target
// implementations of efc.Bus must execute this sequence from a memory
// other than the flash being read (RAM or ROM); debug-probe buses are
// unaffected.
func (d *Driver) ReadUniqueID() ([efc.UniqueIDSize]byte, error) {
	var id [efc.UniqueIDSize]byte
	c := d.banks[0]

	// Raw command write: the ready flag falls during unique-ID mode, so
	// the usual issue-and-poll path would wait on the wrong edge.
	if err := c.WriteCommand(efc.CmdStartUniqueID, 0); err != nil {
		return id, err
	}

	if err := efc.ReadBytes(d.bus, d.geom.Base, id[:]); err != nil {
		return id, err
	}

	if err := c.WriteCommand(efc.CmdStopUniqueID, 0); err != nil {
		return id, err
	}
	if err := c.WaitReady(); err != nil {
		return id, err
	}
	return id, nil
}
