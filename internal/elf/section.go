package elf

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Section types this reader understands.
const (
	SectionTypeNull     = 0
	SectionTypeProgBits = 1
	SectionTypeSymTab   = 2
	SectionTypeStrTab   = 3
)

// SectionHeaderSize is the size of an ELF64 section header record.
const SectionHeaderSize = 64

// SectionHeader is one raw section header record.
type SectionHeader struct {
	data  [SectionHeaderSize]byte
	order binary.ByteOrder
}

func (h SectionHeader) Name() uint32      { return h.order.Uint32(h.data[0x00:]) }
func (h SectionHeader) Type() uint32      { return h.order.Uint32(h.data[0x04:]) }
func (h SectionHeader) Flags() uint64     { return h.order.Uint64(h.data[0x08:]) }
func (h SectionHeader) Addr() uint64      { return h.order.Uint64(h.data[0x10:]) }
func (h SectionHeader) Offset() uint64    { return h.order.Uint64(h.data[0x18:]) }
func (h SectionHeader) Size() uint64      { return h.order.Uint64(h.data[0x20:]) }
func (h SectionHeader) Link() uint32      { return h.order.Uint32(h.data[0x28:]) }
func (h SectionHeader) Info() uint32      { return h.order.Uint32(h.data[0x2C:]) }
func (h SectionHeader) AddrAlign() uint64 { return h.order.Uint64(h.data[0x30:]) }
func (h SectionHeader) EntSize() uint64   { return h.order.Uint64(h.data[0x38:]) }

// SectionHeaders is the section header table in file order.
type SectionHeaders []SectionHeader

// SymbolTable returns the first SHT_SYMTAB header. A missing symbol table is not an error;
// stripped binaries simply have none.
func (hs SectionHeaders) SymbolTable() (SectionHeader, bool) {
	for _, h := range hs {
		if h.Type() == SectionTypeSymTab {
			return h, true
		}
	}
	return SectionHeader{}, false
}

// Get returns the header at index, or false when index is out of range.
func (hs SectionHeaders) Get(index uint32) (SectionHeader, bool) {
	if uint64(index) >= uint64(len(hs)) {
		return SectionHeader{}, false
	}
	return hs[index], true
}

// SectionHeaders reads the whole section header table with a single positional read.
func (f *File) SectionHeaders() (SectionHeaders, error) {
	count := uint64(f.SHNum())
	if count == 0 {
		return nil, nil
	}
	if f.SHEntSize() != SectionHeaderSize {
		return nil, fmt.Errorf("%w: section header entry size %d", ErrMalformedBinary, f.SHEntSize())
	}

	buf, err := f.readAt(f.SHOff(), count*SectionHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("read section headers: %w", err)
	}

	headers := make(SectionHeaders, count)
	for i := range headers {
		copy(headers[i].data[:], buf[i*SectionHeaderSize:])
		headers[i].order = f.order
	}
	return headers, nil
}

// Section is the decoded payload of a section: Symbols, StringTable or Unhandled.
type Section interface {
	isSection()
}

// Unhandled is the payload of any section type this reader does not decode.
type Unhandled struct {
	Type uint32
}

func (Unhandled) isSection()   {}
func (Symbols) isSection()     {}
func (StringTable) isSection() {}

// Section reads and decodes the payload described by h.
func (f *File) Section(h SectionHeader) (Section, error) {
	switch h.Type() {
	case SectionTypeSymTab:
		data, err := f.readAt(h.Offset(), h.Size())
		if err != nil {
			return nil, fmt.Errorf("read symbol table: %w", err)
		}
		return decodeSymbols(data, f.order), nil
	case SectionTypeStrTab:
		data, err := f.readAt(h.Offset(), h.Size())
		if err != nil {
			return nil, fmt.Errorf("read string table: %w", err)
		}
		return StringTable(data), nil
	default:
		return Unhandled{Type: h.Type()}, nil
	}
}

// StringTable is the raw blob of a string table section.
type StringTable []byte

// Lookup returns the NUL-terminated string starting at offset.
func (t StringTable) Lookup(offset uint32) (string, bool) {
	if uint64(offset) >= uint64(len(t)) {
		return "", false
	}
	rest := t[offset:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", false
	}
	return string(rest[:end]), true
}

// Name returns the name of sym.
func (t StringTable) Name(sym Symbol) (string, bool) {
	return t.Lookup(sym.NameOffset)
}
