// SPDX-License-Identifier: MIT
package spl

import (
	"encoding/hex"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"github.com/usedbytes/log"
)

// OutputSuffix is appended to the input file name to form the name of the
// file BuildSplOutput creates.
const OutputSuffix = ".normal.out"

// BuildSplOutput reads the SPL binary at path and writes a sibling file
// "<path>.normal.out" containing a freshly built header followed by the
// unmodified payload. The input file is never touched.
func BuildSplOutput(path string, version, backupOffset uint32) error {
	payload, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "Reading input file")
	}

	if len(payload) > MaxPayloadSize {
		return &PayloadTooLargeError{Actual: len(payload), Max: MaxPayloadSize}
	}

	hdr := NewHeader(version, backupOffset)
	hdr.FileSize = uint32(len(payload))
	hdr.CRC = Checksum(payload)

	log.Printf("hdr.SplOffset: 0x%x, hdr.BackupOffset: 0x%x, hdr.Version: 0x%x name:%s\n",
		hdr.SplOffset, hdr.BackupOffset, hdr.Version, path)
	log.Verbosef("Header:\n%s", hex.Dump(hdr.Marshal()))

	outname := path + OutputSuffix
	f, err := os.Create(outname)
	if err != nil {
		return errors.Wrap(err, "Creating output file")
	}

	for _, chunk := range [][]byte{hdr.Marshal(), payload} {
		if _, err := f.Write(chunk); err != nil {
			// Don't leave a partial image behind - a truncated
			// header looks just valid enough to get flashed.
			f.Close()
			os.Remove(outname)
			return errors.Wrap(err, "Writing output file")
		}
	}

	return errors.Wrap(f.Close(), "Closing output file")
}
