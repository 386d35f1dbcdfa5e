// SPDX-License-Identifier: MIT
package spl

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/usedbytes/log"
)

// PatchImageHeader rewrites the header at the start of the image at path so
// that the boot ROM's CRC check fails and it falls back to the backup SPL.
//
// When booting from eMMC the boot ROM reads offset 0x0 instead of partition
// 0 (known issue), so it finds the GPT PMBR there rather than a real SPL.
// Writing the backup address and an invalid CRC into the first HeaderSize
// bytes makes the ROM's check fail and jump to the backup address, where the
// real SPL lives.
//
// A non-zero backupOffset replaces the stored backup address; zero keeps
// whatever the image already carries, so the call is a pure CRC
// invalidation. Everything past the header is preserved byte-for-byte.
func PatchImageHeader(path string, backupOffset uint32) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return errors.Wrap(err, "Opening image file")
	}
	defer f.Close()

	rawData := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, rawData); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrTruncatedFile
		}
		return errors.Wrap(err, "Reading image header")
	}

	// No magic or version check here: images written by other tools (or
	// raw GPT sectors) must still be patchable.
	hdr, err := UnmarshalHeader(rawData)
	if err != nil {
		return errors.Wrap(err, "Parsing image header")
	}

	log.Verbosef("Image header before patch:\n%s\n", hdr)

	if backupOffset != 0 {
		hdr.BackupOffset = backupOffset
	}
	hdr.CRC = BadCRC

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "Seeking to image header")
	}

	if _, err := f.Write(hdr.Marshal()); err != nil {
		return errors.Wrap(err, "Writing image header")
	}

	log.Verbosef("Image header after patch:\n%s", hex.Dump(hdr.Marshal()))
	log.Printf("IMG %s fixed hdr successfully.\n", path)

	return nil
}
