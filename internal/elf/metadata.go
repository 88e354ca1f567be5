package elf

import "fmt"

// Metadata summarizes a binary's header for display next to its tests.
type Metadata struct {
	Endianness string `json:"endianness"`
	Type       string `json:"type"`
	Machine    uint16 `json:"machine"`
	OSABI      uint8  `json:"os_abi"`
	Entry      string `json:"entry"`
	Sections   int    `json:"sections"`
	Symbols    int    `json:"symbols"`
}

// ReadMetadata opens the binary at path and summarizes it.
func ReadMetadata(path string) (Metadata, error) {
	f, err := Open(path)
	if err != nil {
		return Metadata{}, err
	}
	defer func() { _ = f.Close() }()

	return f.Metadata()
}

// Metadata summarizes f. Symbols counts the entries of the symbol table, zero when stripped.
func (f *File) Metadata() (Metadata, error) {
	m := Metadata{
		Endianness: "little",
		Type:       typeName(f.Type()),
		Machine:    f.Machine(),
		OSABI:      f.OSABI(),
		Entry:      fmt.Sprintf("%#x", f.Entry()),
	}
	if f.Data() == DataBigEndian {
		m.Endianness = "big"
	}

	headers, err := f.SectionHeaders()
	if err != nil {
		return Metadata{}, err
	}
	m.Sections = len(headers)

	if symtab, ok := headers.SymbolTable(); ok {
		m.Symbols = int(symtab.Size() / SymbolSize)
	}
	return m, nil
}

func typeName(t uint16) string {
	switch t {
	case TypeRelocatable:
		return "REL"
	case TypeExecutable:
		return "EXEC"
	case TypeShared:
		return "DYN"
	case TypeCore:
		return "CORE"
	default:
		return fmt.Sprintf("%#x", t)
	}
}
