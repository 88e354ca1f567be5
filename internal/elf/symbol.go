package elf

import "encoding/binary"

// SymbolSize is the size of an Elf64_Sym record.
const SymbolSize = 24

// Symbol is one Elf64_Sym record.
type Symbol struct {
	NameOffset   uint32
	Info         uint8
	Other        uint8
	SectionIndex uint16
	Value        uint64
	Size         uint64
}

// Binding returns the symbol binding (upper nibble of Info).
func (s Symbol) Binding() uint8 { return s.Info >> 4 }

// Kind returns the symbol type (lower nibble of Info).
func (s Symbol) Kind() uint8 { return s.Info & 0x0f }

// Symbols is the payload of a symbol table section.
type Symbols []Symbol

// decodeSymbols reinterprets data as an array of symbol records. Trailing bytes that do not
// make up a whole record are ignored.
func decodeSymbols(data []byte, order binary.ByteOrder) Symbols {
	count := len(data) / SymbolSize
	syms := make(Symbols, count)
	for i := range syms {
		rec := data[i*SymbolSize : (i+1)*SymbolSize]
		syms[i] = Symbol{
			NameOffset:   order.Uint32(rec[0:]),
			Info:         rec[4],
			Other:        rec[5],
			SectionIndex: order.Uint16(rec[6:]),
			Value:        order.Uint64(rec[8:]),
			Size:         order.Uint64(rec[16:]),
		}
	}
	return syms
}
