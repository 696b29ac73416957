package taskmeta

import (
	"encoding/binary"
)

// Descriptor format constants. Magic is the little-endian reading of the
// ASCII bytes "barbican"; Version guards every layout change.
const (
	Magic   uint64 = 0x6e61636962726162
	Version uint32 = 1

	// Size is the fixed encoded size of one descriptor in bytes.
	Size = 176

	// MaxResources is the fixed capacity of each resource-grant array.
	MaxResources = 4

	// DigestSize is the size of each integrity digest in bytes.
	DigestSize = 32

	// digestOffset is the byte offset of the first digest field; both
	// digests occupy the record tail.
	digestOffset = Size - 2*DigestSize
)

// Meta is one firmware task descriptor. Field order matches the encoded
// record; see Encode for the byte layout.
type Meta struct {
	Handle TaskHandle

	Priority     uint8
	Quantum      uint8
	Capabilities uint32
	Flags        JobFlags

	Domain uint8

	// Memory layout, resolved after relinking. Addresses and sizes are
	// 32-bit words on the target.
	TextStart   uint32
	TextSize    uint32
	RodataSize  uint32
	DataSize    uint32
	BssSize     uint32
	HeapSize    uint32
	SvcExchange uint32

	StackSize        uint16
	EntrypointOffset uint16
	FinalizeOffset   uint16

	// Resource grants, at most MaxResources entries each.
	SHMs []uint32
	Devs []uint32
	DMAs []uint32

	// Integrity digests, zero until sealed.
	TaskHMAC     [DigestSize]byte
	MetadataHMAC [DigestSize]byte
}

// Validate checks construction-time invariants: each resource array must fit
// the fixed capacity and the exit-mode bits must decode.
func (m *Meta) Validate() error {
	for _, arr := range []struct {
		name string
		ids  []uint32
	}{
		{"shm", m.SHMs},
		{"dev", m.Devs},
		{"dma", m.DMAs},
	} {
		if len(arr.ids) > MaxResources {
			return newFormatError(ErrCodeResourceOverflow,
				"%d %s grants exceed capacity %d", len(arr.ids), arr.name, MaxResources)
		}
	}
	if _, err := m.Flags.ExitMode(); err != nil {
		return err
	}
	return nil
}

// Encode serializes the descriptor little-endian into a Size-byte record.
// Digest fields are written as-is; Seal computes them.
func (m *Meta) Encode() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, Size)
	buf = binary.LittleEndian.AppendUint64(buf, Magic)
	buf = binary.LittleEndian.AppendUint32(buf, Version)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(m.Handle))
	buf = append(buf, m.Priority, m.Quantum)
	buf = binary.LittleEndian.AppendUint32(buf, m.Capabilities)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(m.Flags))
	buf = append(buf, m.Domain)
	buf = binary.LittleEndian.AppendUint32(buf, m.TextStart)
	buf = binary.LittleEndian.AppendUint32(buf, m.TextSize)
	buf = binary.LittleEndian.AppendUint32(buf, m.RodataSize)
	buf = binary.LittleEndian.AppendUint32(buf, m.DataSize)
	buf = binary.LittleEndian.AppendUint32(buf, m.BssSize)
	buf = binary.LittleEndian.AppendUint32(buf, m.HeapSize)
	buf = binary.LittleEndian.AppendUint32(buf, m.SvcExchange)
	buf = binary.LittleEndian.AppendUint16(buf, m.StackSize)
	buf = binary.LittleEndian.AppendUint16(buf, m.EntrypointOffset)
	buf = binary.LittleEndian.AppendUint16(buf, m.FinalizeOffset)
	buf = appendResources(buf, m.SHMs)
	buf = appendResources(buf, m.Devs)
	buf = appendResources(buf, m.DMAs)
	buf = append(buf, m.TaskHMAC[:]...)
	buf = append(buf, m.MetadataHMAC[:]...)
	return buf, nil
}

// appendResources writes one count byte followed by the fixed four-slot
// array, unused slots zeroed.
func appendResources(buf []byte, ids []uint32) []byte {
	buf = append(buf, uint8(len(ids)))
	for _, id := range ids {
		buf = binary.LittleEndian.AppendUint32(buf, id)
	}
	for i := len(ids); i < MaxResources; i++ {
		buf = binary.LittleEndian.AppendUint32(buf, 0)
	}
	return buf
}

// Decode parses a Size-byte record back into a descriptor. It is the inverse
// of Encode and fails with a format error on wrong length, magic, version,
// resource count or exit mode.
func Decode(b []byte) (*Meta, error) {
	if len(b) != Size {
		return nil, newFormatError(ErrCodeBadLength, "got %d bytes, want %d", len(b), Size)
	}
	if magic := binary.LittleEndian.Uint64(b[0:]); magic != Magic {
		return nil, newFormatError(ErrCodeBadMagic, "got %#x, want %#x", magic, Magic)
	}
	if version := binary.LittleEndian.Uint32(b[8:]); version != Version {
		return nil, newFormatError(ErrCodeBadVersion, "got %d, want %d", version, Version)
	}

	m := &Meta{
		Handle:           TaskHandle(binary.LittleEndian.Uint32(b[12:])),
		Priority:         b[16],
		Quantum:          b[17],
		Capabilities:     binary.LittleEndian.Uint32(b[18:]),
		Flags:            JobFlags(binary.LittleEndian.Uint32(b[22:])),
		Domain:           b[26],
		TextStart:        binary.LittleEndian.Uint32(b[27:]),
		TextSize:         binary.LittleEndian.Uint32(b[31:]),
		RodataSize:       binary.LittleEndian.Uint32(b[35:]),
		DataSize:         binary.LittleEndian.Uint32(b[39:]),
		BssSize:          binary.LittleEndian.Uint32(b[43:]),
		HeapSize:         binary.LittleEndian.Uint32(b[47:]),
		SvcExchange:      binary.LittleEndian.Uint32(b[51:]),
		StackSize:        binary.LittleEndian.Uint16(b[55:]),
		EntrypointOffset: binary.LittleEndian.Uint16(b[57:]),
		FinalizeOffset:   binary.LittleEndian.Uint16(b[59:]),
	}

	var err error
	off := 61
	if m.SHMs, off, err = decodeResources(b, off, "shm"); err != nil {
		return nil, err
	}
	if m.Devs, off, err = decodeResources(b, off, "dev"); err != nil {
		return nil, err
	}
	if m.DMAs, off, err = decodeResources(b, off, "dma"); err != nil {
		return nil, err
	}

	copy(m.TaskHMAC[:], b[off:off+DigestSize])
	copy(m.MetadataHMAC[:], b[off+DigestSize:off+2*DigestSize])

	if _, err := m.Flags.ExitMode(); err != nil {
		return nil, err
	}
	return m, nil
}

// decodeResources reads one count byte plus the fixed four-slot array,
// returning the populated prefix and the offset past the array.
func decodeResources(b []byte, off int, name string) ([]uint32, int, error) {
	count := int(b[off])
	off++
	if count > MaxResources {
		return nil, 0, newFormatError(ErrCodeResourceOverflow,
			"%d %s grants exceed capacity %d", count, name, MaxResources)
	}
	var ids []uint32
	for i := 0; i < count; i++ {
		ids = append(ids, binary.LittleEndian.Uint32(b[off+4*i:]))
	}
	return ids, off + 4*MaxResources, nil
}
