// SPDX-License-Identifier: MIT
package spl

import (
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, data []byte) (string, func()) {
	t.Helper()

	dir, err := ioutil.TempDir("", "spltool")
	if err != nil {
		t.Fatal(err)
	}

	fname := filepath.Join(dir, "u-boot-spl.bin")
	if err := ioutil.WriteFile(fname, data, 0644); err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}

	return fname, func() { os.RemoveAll(dir) }
}

func TestBuildSplOutput(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}

	fname, cleanup := writeTempFile(t, payload)
	defer cleanup()

	err := BuildSplOutput(fname, 0x01010101, 0x200000)
	if err != nil {
		t.Fatal(err)
	}

	out, err := ioutil.ReadFile(fname + OutputSuffix)
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != HeaderSize+len(payload) {
		t.Fatalf("output size: expected %d, got %d", HeaderSize+len(payload), len(out))
	}

	hdr, err := UnmarshalHeader(out)
	if err != nil {
		t.Fatal(err)
	}

	if hdr.SplOffset != SplHeaderOffset {
		t.Errorf("SplOffset: expected 0x%x, got 0x%x", SplHeaderOffset, hdr.SplOffset)
	}

	if hdr.BackupOffset != 0x200000 {
		t.Errorf("BackupOffset: expected 0x200000, got 0x%x", hdr.BackupOffset)
	}

	if hdr.Version != 0x01010101 {
		t.Errorf("Version: expected 0x01010101, got 0x%x", hdr.Version)
	}

	if hdr.FileSize != uint32(len(payload)) {
		t.Errorf("FileSize: expected %d, got %d", len(payload), hdr.FileSize)
	}

	if hdr.CRC != 0x55bc801d {
		t.Errorf("CRC: expected 0x55bc801d, got 0x%08x", hdr.CRC)
	}

	if !bytes.Equal(out[HeaderSize:], payload) {
		t.Error("payload modified in output")
	}

	// Input must be left alone
	in, err := ioutil.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(in, payload) {
		t.Error("input file modified")
	}
}

func TestBuildSplOutputSizeBoundary(t *testing.T) {
	fname, cleanup := writeTempFile(t, make([]byte, MaxPayloadSize))
	defer cleanup()

	err := BuildSplOutput(fname, 0x01010101, 0x200000)
	if err != nil {
		t.Fatalf("payload of exactly %d bytes should succeed: %v", MaxPayloadSize, err)
	}
}

func TestBuildSplOutputTooLarge(t *testing.T) {
	fname, cleanup := writeTempFile(t, make([]byte, MaxPayloadSize+1))
	defer cleanup()

	err := BuildSplOutput(fname, 0x01010101, 0x200000)

	var tooLarge *PayloadTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected PayloadTooLargeError, got %v", err)
	}

	if tooLarge.Actual != MaxPayloadSize+1 || tooLarge.Max != MaxPayloadSize {
		t.Errorf("expected actual/max %d/%d, got %d/%d",
			MaxPayloadSize+1, MaxPayloadSize, tooLarge.Actual, tooLarge.Max)
	}

	if _, err := os.Stat(fname + OutputSuffix); !os.IsNotExist(err) {
		t.Error("output file created despite oversized payload")
	}
}

func TestBuildSplOutputMissingInput(t *testing.T) {
	err := BuildSplOutput("/nonexistent/u-boot-spl.bin", 0x01010101, 0x200000)
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
}
