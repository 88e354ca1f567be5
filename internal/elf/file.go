// Package elf is a minimal reader for 64-bit ELF executables.
//
// It reads just enough of a binary to find its symbol table and the string table naming those
// symbols. Program code, relocations and DWARF are never parsed.
package elf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// HeaderSize is the size of the ELF64 file header.
const HeaderSize = 64

var magic = []byte{0x7f, 'E', 'L', 'F'}

var (
	// ErrNotABinary is returned for files that are too short or lack the ELF magic.
	ErrNotABinary = errors.New("file is not an ELF binary")
	// ErrUnsupported64Bit is returned for ELF files whose class is not 64-bit.
	ErrUnsupported64Bit = errors.New("ELF binary is not 64-bit")
	// ErrMalformedBinary is returned when the binary's tables are structurally inconsistent.
	ErrMalformedBinary = errors.New("malformed ELF binary")
)

// Identification and header constants used by this reader.
const (
	ClassELF64 = 2

	DataLittleEndian = 1
	DataBigEndian    = 2

	TypeRelocatable = 1
	TypeExecutable  = 2
	TypeShared      = 3
	TypeCore        = 4
)

// Header field offsets within the ELF64 file header.
const (
	offClass     = 0x04
	offData      = 0x05
	offVersion   = 0x06
	offOSABI     = 0x07
	offType      = 0x10
	offMachine   = 0x12
	offEVersion  = 0x14
	offEntry     = 0x18
	offPHOff     = 0x20
	offSHOff     = 0x28
	offFlags     = 0x30
	offEHSize    = 0x34
	offPHEntSize = 0x36
	offPHNum     = 0x38
	offSHEntSize = 0x3A
	offSHNum     = 0x3C
	offSHStrNdx  = 0x3E
)

// File is an open ELF64 binary together with its raw file header.
type File struct {
	r      io.ReaderAt
	closer io.Closer
	size   int64
	header [HeaderSize]byte
	order  binary.ByteOrder
}

// Open opens the binary at path and validates its header.
func Open(path string) (*File, error) {
	// #nosec G304 -- callers hand us paths found on disk on purpose.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	file, err := newFile(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	file.closer = f

	return file, nil
}

// NewFile reads an ELF64 binary from r, which holds size bytes.
func NewFile(r io.ReaderAt, size int64) (*File, error) {
	return newFile(r, size)
}

func newFile(r io.ReaderAt, size int64) (*File, error) {
	if size < HeaderSize {
		return nil, ErrNotABinary
	}

	f := &File{r: r, size: size}
	if err := readFull(r, f.header[:], 0); err != nil {
		return nil, fmt.Errorf("read ELF header: %w", err)
	}

	if !bytes.Equal(f.header[:len(magic)], magic) {
		return nil, ErrNotABinary
	}

	// Endianness is decided once here; every accessor reuses it.
	switch f.header[offData] {
	case DataBigEndian:
		f.order = binary.BigEndian
	default:
		f.order = binary.LittleEndian
	}

	if f.Class() != ClassELF64 {
		return nil, ErrUnsupported64Bit
	}

	return f, nil
}

// Close releases the underlying file, if File owns one.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// ByteOrder returns the byte order declared by the header.
func (f *File) ByteOrder() binary.ByteOrder { return f.order }

func (f *File) Class() uint8      { return f.header[offClass] }
func (f *File) Data() uint8       { return f.header[offData] }
func (f *File) Version() uint8    { return f.header[offVersion] }
func (f *File) OSABI() uint8      { return f.header[offOSABI] }
func (f *File) Type() uint16      { return f.order.Uint16(f.header[offType:]) }
func (f *File) Machine() uint16   { return f.order.Uint16(f.header[offMachine:]) }
func (f *File) EVersion() uint32  { return f.order.Uint32(f.header[offEVersion:]) }
func (f *File) Entry() uint64     { return f.order.Uint64(f.header[offEntry:]) }
func (f *File) PHOff() uint64     { return f.order.Uint64(f.header[offPHOff:]) }
func (f *File) SHOff() uint64     { return f.order.Uint64(f.header[offSHOff:]) }
func (f *File) Flags() uint32     { return f.order.Uint32(f.header[offFlags:]) }
func (f *File) EHSize() uint16    { return f.order.Uint16(f.header[offEHSize:]) }
func (f *File) PHEntSize() uint16 { return f.order.Uint16(f.header[offPHEntSize:]) }
func (f *File) PHNum() uint16     { return f.order.Uint16(f.header[offPHNum:]) }
func (f *File) SHEntSize() uint16 { return f.order.Uint16(f.header[offSHEntSize:]) }
func (f *File) SHNum() uint16     { return f.order.Uint16(f.header[offSHNum:]) }
func (f *File) SHStrNdx() uint16  { return f.order.Uint16(f.header[offSHStrNdx:]) }

// IsExecutableOrShared reports whether the file type is ET_EXEC or ET_DYN.
func (f *File) IsExecutableOrShared() bool {
	t := f.Type()
	return t == TypeExecutable || t == TypeShared
}

// readAt reads exactly size bytes at off, rejecting ranges outside the file.
func (f *File) readAt(off, size uint64) ([]byte, error) {
	if off > uint64(f.size) || size > uint64(f.size)-off {
		return nil, fmt.Errorf("%w: range [%d, +%d) exceeds file size %d", ErrMalformedBinary, off, size, f.size)
	}

	buf := make([]byte, size)
	if err := readFull(f.r, buf, int64(off)); err != nil {
		return nil, fmt.Errorf("read at offset %d: %w", off, err)
	}
	return buf, nil
}

// readFull is ReadAt that tolerates io.EOF when the buffer was filled.
func readFull(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return err
}
