// Package endian provides byte order utilities for binary encoding and decoding.
//
// This package extends Go's standard encoding/binary package by combining
// ByteOrder and AppendByteOrder interfaces into a unified EndianEngine
// interface, and adds the MRC machine-stamp mapping: the 4-byte witness an
// MRC header carries to declare the byte order of every multi-byte field.
//
// # Basic Usage
//
// Readers derive the engine from the header's machine stamp:
//
//	engine, err := endian.ByteOrderFromMachineStamp(stamp)
//
// Writers go the other way, stamping the header from the chosen engine:
//
//	stamp, err := endian.MachineStampFromByteOrder(endian.GetNativeEngine())
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/kevinpetersavage/mrcfile/errs"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single interface for convenient byte order
// operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian
// from the standard library, making it fully compatible with existing Go
// code while providing access to both read/write and append operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Machine stamp constants defined by the MRC2014 format. Only the first two
// bytes are significant; the trailing two are always zero.
var (
	LittleEndianStamp = [4]byte{0x44, 0x44, 0x00, 0x00}
	BigEndianStamp    = [4]byte{0x11, 0x11, 0x00, 0x00}
)

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	// For a big-endian system, the MSB (0x01) is first.
	var i uint16 = 0x0100

	// Create a byte slice pointing to the memory address of 'i'.
	// We only need the first byte.
	b := (*[2]byte)(unsafe.Pointer(&i))

	// Check the first byte at the lowest memory address
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetNativeEngine returns the engine matching the host's byte order.
func GetNativeEngine() EndianEngine {
	if IsNativeBigEndian() {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// MachineStampFromByteOrder returns the 4-byte machine stamp declaring the
// byte order of the given engine.
//
// Parameters:
//   - engine: One of the engines returned by this package
//
// Returns:
//   - [4]byte: LittleEndianStamp or BigEndianStamp
//   - error: ErrUnrecognizedByteOrder for any other ByteOrder implementation
func MachineStampFromByteOrder(engine EndianEngine) ([4]byte, error) {
	switch engine {
	case binary.LittleEndian:
		return LittleEndianStamp, nil
	case binary.BigEndian:
		return BigEndianStamp, nil
	default:
		return [4]byte{}, fmt.Errorf("%w: %v", errs.ErrUnrecognizedByteOrder, engine)
	}
}

// ByteOrderFromMachineStamp returns the engine declared by a header machine
// stamp.
//
// Only the leading bytes are inspected: 0x44 in the first byte means
// little-endian (a number of writers emit 0x44 0x41), and 0x11 0x11 means
// big-endian. Anything else fails with ErrUnrecognizedByteOrder.
func ByteOrderFromMachineStamp(stamp [4]byte) (EndianEngine, error) {
	switch {
	case stamp[0] == 0x44:
		return binary.LittleEndian, nil
	case stamp[0] == 0x11 && stamp[1] == 0x11:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: machine stamp %s", errs.ErrUnrecognizedByteOrder, PrettyMachineStamp(stamp))
	}
}

// PrettyMachineStamp formats a machine stamp as space-separated hex bytes,
// e.g. "0x44 0x44 0x00 0x00".
func PrettyMachineStamp(stamp [4]byte) string {
	return fmt.Sprintf("0x%02x 0x%02x 0x%02x 0x%02x", stamp[0], stamp[1], stamp[2], stamp[3])
}
