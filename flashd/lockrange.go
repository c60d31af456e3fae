package flashd

import "github.com/moffa90/go-eefc/efc"

// computeLockRange expands [start, end) outward to the nearest enclosing
// whole lock regions: start rounds down, end rounds up, both to lock-region
// boundaries. Lock and Unlock share it.
func (d *Driver) computeLockRange(start, end uint32) (actualStart, actualEnd uint32, err error) {
	if end <= start {
		return 0, 0, &efc.AddressRangeError{Addr: end, Base: d.geom.Base, Size: d.geom.Size}
	}
	if err := d.checkRange(start, end-start); err != nil {
		return 0, 0, err
	}

	startBank, startPage, _, err := efc.Translate(&d.geom, start)
	if err != nil {
		return 0, 0, err
	}
	endBank, endPage, _, err := efc.Translate(&d.geom, end-1)
	if err != nil {
		return 0, 0, err
	}
	endPage++

	ppr := d.geom.PagesPerRegion()
	startPage -= startPage % ppr
	if rem := endPage % ppr; rem != 0 {
		endPage += ppr - rem
	}

	actualStart, err = efc.ComputeAddress(&d.geom, startBank, startPage, 0)
	if err != nil {
		return 0, 0, err
	}
	actualEnd, err = efc.ComputeAddress(&d.geom, endBank, endPage, 0)
	if err != nil {
		return 0, 0, err
	}
	return actualStart, actualEnd, nil
}

// Lock write-protects all lock regions overlapping [start, end). The
// expanded range actually locked is returned.
//
// Locking proceeds region by region and stops at the first command error,
// which can leave a partial lock state; use IsLocked to inspect it.
func (d *Driver) Lock(start, end uint32) (actualStart, actualEnd uint32, err error) {
	return d.lockOp(efc.CmdSetLockBit, start, end)
}

// Unlock removes write protection from all lock regions overlapping
// [start, end). The expanded range actually unlocked is returned.
//
// Like Lock, a command error aborts mid-range with regions before it
// already unlocked.
func (d *Driver) Unlock(start, end uint32) (actualStart, actualEnd uint32, err error) {
	return d.lockOp(efc.CmdClearLockBit, start, end)
}

func (d *Driver) lockOp(cmd efc.Command, start, end uint32) (uint32, uint32, error) {
	actualStart, actualEnd, err := d.computeLockRange(start, end)
	if err != nil {
		return 0, 0, err
	}

	bank, page, _, err := efc.Translate(&d.geom, actualStart)
	if err != nil {
		return 0, 0, err
	}

	ppr := d.geom.PagesPerRegion()
	regions := (actualEnd - actualStart) / d.geom.LockRegionSize
	for i := uint32(0); i < regions; i++ {
		if err := d.perform(bank, cmd, page); err != nil {
			return actualStart, actualEnd, err
		}
		page += ppr
	}
	return actualStart, actualEnd, nil
}

// IsLocked returns the number of locked regions overlapping [start, end).
// It queries the controller owning start: the lock bitmap streams out of
// its result register, one bit per region packed 32 to a word.
func (d *Driver) IsLocked(start, end uint32) (int, error) {
	if end < start {
		return 0, &efc.AddressRangeError{Addr: end, Base: d.geom.Base, Size: d.geom.Size}
	}
	if err := d.checkRange(start, end-start); err != nil {
		return 0, err
	}
	if end == start {
		return 0, nil
	}

	bank, startPage, _, err := efc.Translate(&d.geom, start)
	if err != nil {
		return 0, err
	}
	_, endPage, _, err := efc.Translate(&d.geom, end-1)
	if err != nil {
		return 0, err
	}
	endPage++

	ppr := d.geom.PagesPerRegion()
	startRegion := startPage / ppr
	endRegion := endPage / ppr
	if endPage%ppr != 0 {
		endRegion++
	}

	if err := d.perform(bank, efc.CmdGetLockBit, 0); err != nil {
		return 0, err
	}
	words := make([]uint32, d.geom.LockBits/32)
	for i := range words {
		w, err := d.banks[bank].Result()
		if err != nil {
			return 0, err
		}
		words[i] = w
	}

	locked := 0
	for region := startRegion; region < endRegion; region++ {
		if words[region/32]&(1<<(region%32)) != 0 {
			locked++
		}
	}
	return locked, nil
}
