// Package elftest builds small synthetic ELF images for tests.
package elftest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Image describes a synthetic binary. The zero value is a little-endian 64-bit ET_EXEC with a
// symbol table linked to its string table and no symbols besides the null entry.
type Image struct {
	// Class is the EI_CLASS byte. Zero means 64-bit.
	Class byte
	// BigEndian selects ELFDATA2MSB.
	BigEndian bool
	// Type is e_type. Zero means ET_EXEC.
	Type uint16
	// Symbols are the names placed in the symbol table.
	Symbols []string
	// NoSymbolTable omits the SHT_SYMTAB section.
	NoSymbolTable bool
	// SymbolTableLink overrides sh_link of the symbol table when non-nil.
	SymbolTableLink *uint32
}

const (
	headerSize  = 64
	shdrSize    = 64
	symSize     = 24
	strtabIndex = 1
)

// Bytes renders the image.
func (img Image) Bytes() []byte {
	var order binary.ByteOrder = binary.LittleEndian
	data := byte(1)
	if img.BigEndian {
		order = binary.BigEndian
		data = 2
	}
	class := img.Class
	if class == 0 {
		class = 2
	}
	typ := img.Type
	if typ == 0 {
		typ = 2
	}

	// String table: leading NUL, then each name NUL-terminated.
	strtab := []byte{0}
	nameOffsets := make([]uint32, len(img.Symbols))
	for i, name := range img.Symbols {
		nameOffsets[i] = uint32(len(strtab))
		strtab = append(strtab, name...)
		strtab = append(strtab, 0)
	}

	strtabOff := uint64(headerSize)
	symtabOff := align8(strtabOff + uint64(len(strtab)))

	var symtab []byte
	if !img.NoSymbolTable {
		symtab = make([]byte, symSize*(len(img.Symbols)+1))
		for i, off := range nameOffsets {
			rec := symtab[(i+1)*symSize:]
			order.PutUint32(rec[0:], off)
			rec[4] = 0x12 // STB_GLOBAL, STT_FUNC
			order.PutUint16(rec[6:], 1)
			order.PutUint64(rec[8:], uint64(0x1000+i*0x10))
			order.PutUint64(rec[16:], 0x10)
		}
	}

	shOff := align8(symtabOff + uint64(len(symtab)))
	shnum := 2
	if !img.NoSymbolTable {
		shnum = 3
	}

	out := make([]byte, shOff+uint64(shnum*shdrSize))

	copy(out, []byte{0x7f, 'E', 'L', 'F', class, data, 1, 0})
	order.PutUint16(out[0x10:], typ)
	order.PutUint16(out[0x12:], 62) // EM_X86_64
	order.PutUint32(out[0x14:], 1)
	order.PutUint64(out[0x18:], 0x1000)
	order.PutUint64(out[0x28:], shOff)
	order.PutUint16(out[0x34:], headerSize)
	order.PutUint16(out[0x36:], 56)
	order.PutUint16(out[0x3A:], shdrSize)
	order.PutUint16(out[0x3C:], uint16(shnum))

	copy(out[strtabOff:], strtab)
	copy(out[symtabOff:], symtab)

	// Section 0 stays all-zero (SHT_NULL).
	sh := out[shOff+strtabIndex*shdrSize:]
	order.PutUint32(sh[0x04:], 3) // SHT_STRTAB
	order.PutUint64(sh[0x18:], strtabOff)
	order.PutUint64(sh[0x20:], uint64(len(strtab)))
	order.PutUint64(sh[0x30:], 1)

	if !img.NoSymbolTable {
		link := uint32(strtabIndex)
		if img.SymbolTableLink != nil {
			link = *img.SymbolTableLink
		}
		sh = out[shOff+2*shdrSize:]
		order.PutUint32(sh[0x04:], 2) // SHT_SYMTAB
		order.PutUint64(sh[0x18:], symtabOff)
		order.PutUint64(sh[0x20:], uint64(len(symtab)))
		order.PutUint32(sh[0x28:], link)
		order.PutUint32(sh[0x2C:], 1)
		order.PutUint64(sh[0x30:], 8)
		order.PutUint64(sh[0x38:], symSize)
	}

	return out
}

// Write writes the image to dir/name with the given mode and returns its path.
func (img Image) Write(t testing.TB, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, img.Bytes(), mode); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Link returns a pointer to v, for Image.SymbolTableLink.
func Link(v uint32) *uint32 { return &v }

func align8(v uint64) uint64 {
	return (v + 7) &^ 7
}
