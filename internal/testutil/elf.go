// Package testutil provides shared test fixtures. The main one is a tiny
// ELF32 writer: layout and metadata tests need real images on disk, and
// checking in prebuilt binaries makes the fixtures unreviewable.
package testutil

import (
	"encoding/binary"
	"os"
	"testing"
)

// ELFSection declares one section of a fixture image. A nil Data with a
// nonzero NoBits size produces an SHT_NOBITS section (the .bss case).
type ELFSection struct {
	Name   string
	Data   []byte
	NoBits uint32
}

const (
	elfHeaderSize    = 52
	sectionEntrySize = 40

	shtProgbits = 1
	shtStrtab   = 3
	shtNobits   = 8
)

// WriteELF writes a minimal little-endian ELF32 executable containing the
// given sections, in order, to path. The image parses with debug/elf; it is
// not runnable.
func WriteELF(t *testing.T, path string, sections []ELFSection) {
	t.Helper()

	// Section name string table: null byte, then each name, then our own.
	strtab := []byte{0}
	nameOffsets := make([]uint32, len(sections))
	for i, s := range sections {
		nameOffsets[i] = uint32(len(strtab))
		strtab = append(strtab, s.Name...)
		strtab = append(strtab, 0)
	}
	strtabName := uint32(len(strtab))
	strtab = append(strtab, ".shstrtab"...)
	strtab = append(strtab, 0)

	var body []byte
	dataOffsets := make([]uint32, len(sections))
	for i, s := range sections {
		dataOffsets[i] = elfHeaderSize + uint32(len(body))
		body = append(body, s.Data...)
	}
	strtabOffset := elfHeaderSize + uint32(len(body))
	body = append(body, strtab...)
	for len(body)%4 != 0 {
		body = append(body, 0)
	}
	shoff := elfHeaderSize + uint32(len(body))
	shnum := uint16(len(sections) + 2) // null entry + sections + .shstrtab

	le := binary.LittleEndian
	out := make([]byte, 0, int(shoff)+int(shnum)*sectionEntrySize)
	out = append(out, 0x7f, 'E', 'L', 'F', 1, 1, 1)
	out = append(out, make([]byte, 9)...)
	out = le.AppendUint16(out, 2)  // ET_EXEC
	out = le.AppendUint16(out, 40) // EM_ARM
	out = le.AppendUint32(out, 1)
	out = le.AppendUint32(out, 0) // entry
	out = le.AppendUint32(out, 0) // phoff
	out = le.AppendUint32(out, shoff)
	out = le.AppendUint32(out, 0) // flags
	out = le.AppendUint16(out, elfHeaderSize)
	out = le.AppendUint16(out, 0) // phentsize
	out = le.AppendUint16(out, 0) // phnum
	out = le.AppendUint16(out, sectionEntrySize)
	out = le.AppendUint16(out, shnum)
	out = le.AppendUint16(out, shnum-1) // shstrndx
	out = append(out, body...)

	header := func(name, typ, offset, size uint32) {
		out = le.AppendUint32(out, name)
		out = le.AppendUint32(out, typ)
		out = le.AppendUint32(out, 0) // flags
		out = le.AppendUint32(out, 0) // addr
		out = le.AppendUint32(out, offset)
		out = le.AppendUint32(out, size)
		out = le.AppendUint32(out, 0) // link
		out = le.AppendUint32(out, 0) // info
		out = le.AppendUint32(out, 1) // addralign
		out = le.AppendUint32(out, 0) // entsize
	}

	header(0, 0, 0, 0)
	for i, s := range sections {
		if s.Data == nil && s.NoBits > 0 {
			header(nameOffsets[i], shtNobits, dataOffsets[i], s.NoBits)
			continue
		}
		header(nameOffsets[i], shtProgbits, dataOffsets[i], uint32(len(s.Data)))
	}
	header(strtabName, shtStrtab, strtabOffset, uint32(len(strtab)))

	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatalf("write elf fixture: %v", err)
	}
}
