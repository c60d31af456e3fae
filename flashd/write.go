package flashd

import "github.com/moffa90/go-eefc/efc"

// Write programs data into the flash starting at addr. Neither addr nor
// len(data) needs to be page-aligned: each touched page is staged in the
// session's page buffer, existing content outside the written window is
// read back and preserved, and the full page is committed with the
// write-page command. This function only returns once every page has been
// effectively written.
//
// On a command failure the error is returned immediately; pages before the
// failing one are already committed and are not rolled back.
func (d *Driver) Write(addr uint32, data []byte) error {
	if data == nil {
		return ErrNilBuffer
	}
	if err := d.checkRange(addr, uint32(len(data))); err != nil {
		return err
	}

	totalPages := pagesTouched(addr, uint32(len(data)), d.geom.PageSize)
	written := 0

	for len(data) > 0 {
		bank, page, offset, err := efc.Translate(&d.geom, addr)
		if err != nil {
			return err
		}

		writeSize := d.geom.PageSize - offset
		if writeSize > uint32(len(data)) {
			writeSize = uint32(len(data))
		}

		pageAddr, err := efc.ComputeAddress(&d.geom, bank, page, 0)
		if err != nil {
			return err
		}
		// Stores must land in the page latch, not the read mapping.
		latch := pageAddr | efc.WriteAliasFlag

		// Read the whole page first so content around the written
		// window is preserved when the page commits.
		if err := efc.ReadBytes(d.bus, latch, d.page); err != nil {
			return err
		}
		copy(d.page[offset:], data[:writeSize])

		// Word stores only; narrower accesses corrupt the latch.
		if err := efc.WriteWords(d.bus, latch, d.page); err != nil {
			return err
		}

		if err := d.perform(bank, efc.CmdWritePage, page); err != nil {
			return err
		}

		data = data[writeSize:]
		addr += writeSize
		written += int(writeSize)

		d.logDebug("page committed", "bank", bank, "page", page, "bytes", writeSize)
		d.reportProgress(Progress{
			PagesWritten: totalPages - pagesTouched(addr, uint32(len(data)), d.geom.PageSize),
			TotalPages:   totalPages,
			BytesWritten: written,
		})
	}

	d.logInfo("write complete", "addr", addr-uint32(written), "bytes", written)
	return nil
}

// pagesTouched counts the pages overlapped by [addr, addr+size).
func pagesTouched(addr, size, pageSize uint32) int {
	if size == 0 {
		return 0
	}
	first := addr / pageSize
	last := (addr + size - 1) / pageSize
	return int(last - first + 1)
}
