// SPDX-License-Identifier: MIT
package spl

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedHeader is returned by UnmarshalHeader when there aren't
	// enough bytes to hold a full header.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrTruncatedFile is returned by PatchImageHeader when the target file
	// is too short to contain a header.
	ErrTruncatedFile = errors.New("file too short to contain a header")
)

// PayloadTooLargeError is returned by BuildSplOutput when the SPL binary
// won't fit in the boot ROM's load region.
type PayloadTooLargeError struct {
	Actual int
	Max    int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("SPL too large (%d bytes): maximum allowed size is %d bytes, rebuild with -Os",
		e.Actual, e.Max)
}
