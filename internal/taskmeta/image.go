package taskmeta

import (
	"bytes"
	"debug/elf"
	"fmt"
)

// svcExchangeSection is the task/kernel exchange area; its load address
// lands in the descriptor so the kernel can map it without parsing the
// image.
const svcExchangeSection = ".svc_exchange"

// FillLayout populates the descriptor's memory-layout fields from a
// relinked task image. Everything else in m is left untouched; sections a
// task does not carry contribute a zero size.
func FillLayout(m *Meta, image []byte) error {
	f, err := elf.NewFile(bytes.NewReader(image))
	if err != nil {
		return fmt.Errorf("parse task image: %w", err)
	}
	defer f.Close()

	text := f.Section(".text")
	if text == nil {
		return fmt.Errorf("task image has no .text section")
	}
	m.TextStart = uint32(text.Addr)
	m.TextSize = uint32(text.Size)
	m.RodataSize = imageSectionSize(f, ".rodata")
	m.DataSize = imageSectionSize(f, ".data")
	m.BssSize = imageSectionSize(f, ".bss")
	if s := f.Section(svcExchangeSection); s != nil {
		m.SvcExchange = uint32(s.Addr)
	}
	return nil
}

func imageSectionSize(f *elf.File, name string) uint32 {
	if s := f.Section(name); s != nil {
		return uint32(s.Size)
	}
	return 0
}
