package taskmeta

import (
	"bytes"
	"debug/elf"
	"fmt"
)

// TaskListSection is the kernel section reserved at link time for task
// descriptor records. The kernel walks it at boot; slots past the last
// written record stay zeroed so the walk terminates on the missing magic.
const TaskListSection = ".task_list"

// Fixup patches sealed descriptor records into the kernel image's task
// table and returns the patched image. The input is never modified.
func Fixup(kernel []byte, records [][]byte) ([]byte, error) {
	f, err := elf.NewFile(bytes.NewReader(kernel))
	if err != nil {
		return nil, fmt.Errorf("parse kernel image: %w", err)
	}
	defer f.Close()

	section := f.Section(TaskListSection)
	if section == nil {
		return nil, fmt.Errorf("kernel image has no %s section", TaskListSection)
	}
	if section.Type == elf.SHT_NOBITS {
		return nil, fmt.Errorf("%s section has no file contents", TaskListSection)
	}
	if uint64(len(records))*Size > section.Size {
		return nil, fmt.Errorf("task table holds %d records, got %d",
			section.Size/Size, len(records))
	}

	patched := make([]byte, len(kernel))
	copy(patched, kernel)
	table := patched[section.Offset : section.Offset+section.Size]
	for i := range table {
		table[i] = 0
	}
	for i, record := range records {
		if len(record) != Size {
			return nil, newFormatError(ErrCodeBadLength,
				"record %d is %d bytes, want %d", i, len(record), Size)
		}
		copy(table[i*Size:], record)
	}
	return patched, nil
}
