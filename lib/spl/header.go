// SPDX-License-Identifier: MIT
package spl

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/pkg/errors"
)

const (
	// HeaderSize is the exact on-disk size of the SPL header, including
	// both reserved ranges.
	HeaderSize = 1024

	// SplHeaderOffset is where the header sits in flash: 64+256+256 = 0x240
	SplHeaderOffset = 0x240

	// ImageBodyOffset is the fixed offset from the header to the SPL image
	// body, 0x400 (00 04 00 00) currently
	ImageBodyOffset = 0x400

	// BadCRC is written in place of a real checksum so that the boot ROM's
	// CRC check fails and it jumps to the backup address to load the real
	// SPL.
	BadCRC = 0x5A5A5A5A

	// MaxPayloadSize is the largest SPL binary the boot ROM will load,
	// after the header has claimed its share of the load region.
	MaxPayloadSize = 181072 - HeaderSize + 1

	reservedALen = 636
	reservedBLen = 364
)

// Header is the fixed-layout header the boot ROM reads ahead of the SPL
// image. All integer fields are 32-bit little-endian on disk and the layout
// is packed; the reserved ranges are zero on creation and carried through
// verbatim when an existing header is re-encoded.
type Header struct {
	// SplOffset is the offset of this header from the flash info start.
	SplOffset uint32
	// BackupOffset is the offset of the backup SPL image, loaded when the
	// CRC check on the primary fails.
	BackupOffset uint32
	reservedA    [reservedALen]byte
	// Version shall be 0x01010101 for current boot ROMs.
	Version uint32
	// FileSize is the size in bytes of the SPL binary following the header.
	FileSize uint32
	// BodyOffset is the offset from the header to the SPL image body.
	BodyOffset uint32
	// CRC is the CRC32 of the SPL binary, or BadCRC when the header has
	// been deliberately invalidated.
	CRC       uint32
	reservedB [reservedBLen]byte
}

// Byte offsets of the integer fields within the marshalled header.
const (
	splOffsetOffs    = 0
	backupOffsetOffs = 4
	versionOffs      = 8 + reservedALen
	fileSizeOffs     = versionOffs + 4
	bodyOffsetOffs   = fileSizeOffs + 4
	crcOffs          = bodyOffsetOffs + 4
)

// NewHeader returns a header with the fixed offsets populated and all
// reserved bytes zero. FileSize and CRC are left for the caller to fill in
// once the payload is known.
func NewHeader(version, backupOffset uint32) *Header {
	return &Header{
		SplOffset:    SplHeaderOffset,
		BackupOffset: backupOffset,
		Version:      version,
		BodyOffset:   ImageBodyOffset,
	}
}

// Marshal encodes the header into its packed on-disk representation. The
// result is always exactly HeaderSize bytes.
func (h *Header) Marshal() []byte {
	buf := make([]byte, HeaderSize)

	binary.LittleEndian.PutUint32(buf[splOffsetOffs:], h.SplOffset)
	binary.LittleEndian.PutUint32(buf[backupOffsetOffs:], h.BackupOffset)
	copy(buf[8:versionOffs], h.reservedA[:])
	binary.LittleEndian.PutUint32(buf[versionOffs:], h.Version)
	binary.LittleEndian.PutUint32(buf[fileSizeOffs:], h.FileSize)
	binary.LittleEndian.PutUint32(buf[bodyOffsetOffs:], h.BodyOffset)
	binary.LittleEndian.PutUint32(buf[crcOffs:], h.CRC)
	copy(buf[crcOffs+4:], h.reservedB[:])

	return buf
}

// UnmarshalHeader decodes a header from the first HeaderSize bytes of
// rawData. Field values are not validated; any bit pattern is accepted so
// that images written by other tools still round-trip.
func UnmarshalHeader(rawData []byte) (*Header, error) {
	if len(rawData) < HeaderSize {
		return nil, errors.Wrapf(ErrMalformedHeader,
			"got %d bytes, need %d", len(rawData), HeaderSize)
	}

	hdr := &Header{
		SplOffset:    binary.LittleEndian.Uint32(rawData[splOffsetOffs:]),
		BackupOffset: binary.LittleEndian.Uint32(rawData[backupOffsetOffs:]),
		Version:      binary.LittleEndian.Uint32(rawData[versionOffs:]),
		FileSize:     binary.LittleEndian.Uint32(rawData[fileSizeOffs:]),
		BodyOffset:   binary.LittleEndian.Uint32(rawData[bodyOffsetOffs:]),
		CRC:          binary.LittleEndian.Uint32(rawData[crcOffs:]),
	}
	copy(hdr.reservedA[:], rawData[8:versionOffs])
	copy(hdr.reservedB[:], rawData[crcOffs+4:HeaderSize])

	return hdr, nil
}

// Checksum computes the CRC32 the boot ROM verifies over the SPL payload.
// The ROM uses the ISO-HDLC parameterization (polynomial 0xEDB88320
// reflected), which is what the stdlib IEEE table implements.
func Checksum(payload []byte) uint32 {
	return crc32.Checksum(payload, crc32.IEEETable)
}

func (h Header) String() string {
	str := ""
	str += fmt.Sprintf("SPL offset:    0x%x\n", h.SplOffset)
	str += fmt.Sprintf("Backup offset: 0x%x\n", h.BackupOffset)
	str += fmt.Sprintf("Version:       0x%x\n", h.Version)
	str += fmt.Sprintf("File size:     %d\n", h.FileSize)
	str += fmt.Sprintf("Body offset:   0x%x\n", h.BodyOffset)
	str += fmt.Sprintf("CRC32:         0x%08x", h.CRC)
	return str
}
