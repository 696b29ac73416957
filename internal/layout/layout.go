// Package layout computes the firmware memory layout from resolved images
// and renders linker scripts from it.
//
// The layout assigns each image a flash slot after the previous one,
// aligned to the slot granularity, with segment sizes read from the image's
// ELF sections. The layout file is plain JSON so downstream edges (linker
// script generation, task metadata) can consume it without re-reading any
// image.
package layout

import (
	"debug/elf"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFlashBase is the text placement base when no prefix is configured.
const DefaultFlashBase = 0x08000000

// slotAlign is the flash slot granularity; every image starts on a slot
// boundary.
const slotAlign = 0x200

// Region is one image's resolved memory placement.
type Region struct {
	Name       string `json:"name"`
	TextStart  uint32 `json:"text_start"`
	TextSize   uint32 `json:"text_size"`
	RodataSize uint32 `json:"rodata_size"`
	DataSize   uint32 `json:"data_size"`
	BssSize    uint32 `json:"bss_size"`
}

// Layout is the computed whole-firmware memory layout.
type Layout struct {
	FlashBase uint32   `json:"flash_base"`
	Regions   []Region `json:"regions"`
}

// Compute reads each image's section sizes and packs the images into flash
// slots in the given order. Image order is the caller's contract: identical
// input order yields an identical layout.
func Compute(flashBase uint32, images []string) (*Layout, error) {
	l := &Layout{FlashBase: flashBase}
	next := flashBase

	for _, image := range images {
		region, err := readRegion(image)
		if err != nil {
			return nil, err
		}
		region.TextStart = align(next, slotAlign)
		next = region.TextStart + region.TextSize + region.RodataSize + region.DataSize
		l.Regions = append(l.Regions, region)
	}
	return l, nil
}

// Dummy returns a layout with no regions, used to bootstrap linker-script
// generation before any image exists.
func Dummy(flashBase uint32) *Layout {
	return &Layout{FlashBase: flashBase, Regions: []Region{}}
}

// Region looks up an image's region by name.
func (l *Layout) Region(name string) (Region, bool) {
	for _, r := range l.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// WriteFile persists the layout as JSON.
func (l *Layout) WriteFile(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ReadFile loads a persisted layout.
func ReadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", path, err)
	}
	return &l, nil
}

// readRegion extracts segment sizes from one ELF image. Missing sections
// contribute zero: a task with no .data is valid.
func readRegion(image string) (Region, error) {
	f, err := elf.Open(image)
	if err != nil {
		return Region{}, fmt.Errorf("open image %s: %w", image, err)
	}
	defer f.Close()

	region := Region{Name: imageName(image)}
	region.TextSize = sectionSize(f, ".text")
	region.RodataSize = sectionSize(f, ".rodata")
	region.DataSize = sectionSize(f, ".data")
	region.BssSize = sectionSize(f, ".bss")
	return region, nil
}

func sectionSize(f *elf.File, name string) uint32 {
	if s := f.Section(name); s != nil {
		return uint32(s.Size)
	}
	return 0
}

func imageName(image string) string {
	base := filepath.Base(image)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func align(v, boundary uint32) uint32 {
	return (v + boundary - 1) &^ (boundary - 1)
}
