package taskmeta

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMeta(t *testing.T) *Meta {
	t.Helper()

	flags, err := PackJobFlags(true, ExitRestart)
	require.NoError(t, err)

	m := &Meta{
		Priority:         3,
		Quantum:          10,
		Capabilities:     0x00010003,
		Flags:            flags,
		Domain:           1,
		TextStart:        0x08040000,
		TextSize:         0x4000,
		RodataSize:       0x800,
		DataSize:         0x400,
		BssSize:          0x200,
		HeapSize:         0x1000,
		SvcExchange:      0x20008000,
		StackSize:        2048,
		EntrypointOffset: 0x10,
		FinalizeOffset:   0x20,
		SHMs:             []uint32{0x11, 0x12},
		Devs:             []uint32{0x21},
		DMAs:             []uint32{0x31, 0x32, 0x33, 0x34},
	}
	m.Handle.SetID(42)
	return m
}

func TestEncodeSize(t *testing.T) {
	record, err := sampleMeta(t).Encode()
	require.NoError(t, err)
	assert.Len(t, record, Size)
}

func TestEncodeHeaderLayout(t *testing.T) {
	record, err := sampleMeta(t).Encode()
	require.NoError(t, err)

	assert.Equal(t, Magic, binary.LittleEndian.Uint64(record[0:]))
	assert.Equal(t, Version, binary.LittleEndian.Uint32(record[8:]))
	assert.Equal(t, uint32(42)<<13, binary.LittleEndian.Uint32(record[12:]))
	assert.Equal(t, uint8(3), record[16])
	assert.Equal(t, uint8(10), record[17])
}

func TestRoundTrip(t *testing.T) {
	m := sampleMeta(t)
	require.NoError(t, m.Seal([]byte("task image bytes"), sha256.Sum256))

	record, err := m.Encode()
	require.NoError(t, err)

	decoded, err := Decode(record)
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestDecodeFormatErrors(t *testing.T) {
	valid, err := sampleMeta(t).Encode()
	require.NoError(t, err)

	t.Run("short buffer", func(t *testing.T) {
		_, err := Decode(valid[:Size-1])
		assert.True(t, IsFormatError(err, ErrCodeBadLength))
	})

	t.Run("long buffer", func(t *testing.T) {
		_, err := Decode(append(append([]byte{}, valid...), 0))
		assert.True(t, IsFormatError(err, ErrCodeBadLength))
	})

	t.Run("wrong magic", func(t *testing.T) {
		bad := append([]byte{}, valid...)
		binary.LittleEndian.PutUint64(bad[0:], 0xdeadbeef)
		_, err := Decode(bad)
		assert.True(t, IsFormatError(err, ErrCodeBadMagic))
	})

	t.Run("wrong version", func(t *testing.T) {
		bad := append([]byte{}, valid...)
		binary.LittleEndian.PutUint32(bad[8:], Version+1)
		_, err := Decode(bad)
		assert.True(t, IsFormatError(err, ErrCodeBadVersion))
	})

	t.Run("resource count overflow", func(t *testing.T) {
		bad := append([]byte{}, valid...)
		bad[61] = MaxResources + 1
		_, err := Decode(bad)
		assert.True(t, IsFormatError(err, ErrCodeResourceOverflow))
	})

	t.Run("invalid exit mode bits", func(t *testing.T) {
		bad := append([]byte{}, valid...)
		binary.LittleEndian.PutUint32(bad[22:], 0x0000000e)
		_, err := Decode(bad)
		assert.True(t, IsFormatError(err, ErrCodeInvalidExitMode))
	})
}

func TestEncodeRejectsResourceOverflow(t *testing.T) {
	m := sampleMeta(t)
	m.Devs = []uint32{1, 2, 3, 4, 5}

	_, err := m.Encode()
	assert.True(t, IsFormatError(err, ErrCodeResourceOverflow))
}

func TestMetadataDigestDeterminism(t *testing.T) {
	m := sampleMeta(t)
	record, err := m.Encode()
	require.NoError(t, err)

	d1, err := MetadataDigest(record, sha256.Sum256)
	require.NoError(t, err)
	d2, err := MetadataDigest(record, sha256.Sum256)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestMetadataDigestIgnoresDigestFields(t *testing.T) {
	m := sampleMeta(t)
	unsealed, err := m.Encode()
	require.NoError(t, err)

	require.NoError(t, m.Seal([]byte("content"), sha256.Sum256))
	sealed, err := m.Encode()
	require.NoError(t, err)

	d1, err := MetadataDigest(unsealed, sha256.Sum256)
	require.NoError(t, err)
	d2, err := MetadataDigest(sealed, sha256.Sum256)
	require.NoError(t, err)
	assert.Equal(t, d1, d2, "digest fields must be treated as zero while hashing")
}

func TestMetadataDigestSensitiveToSingleBitFlips(t *testing.T) {
	m := sampleMeta(t)
	record, err := m.Encode()
	require.NoError(t, err)

	base, err := MetadataDigest(record, sha256.Sum256)
	require.NoError(t, err)

	// Flip one bit in every non-digest byte; the digest must always move.
	for i := 0; i < digestOffset; i++ {
		mutated := append([]byte{}, record...)
		mutated[i] ^= 0x01

		d, err := MetadataDigest(mutated, sha256.Sum256)
		require.NoError(t, err)
		assert.NotEqual(t, base, d, "bit flip at byte %d left digest unchanged", i)
	}
}

func TestSealPopulatesBothDigests(t *testing.T) {
	m := sampleMeta(t)
	var zero [DigestSize]byte

	require.NoError(t, m.Seal([]byte("task image"), sha256.Sum256))
	assert.NotEqual(t, zero, m.TaskHMAC)
	assert.NotEqual(t, zero, m.MetadataHMAC)
	assert.Equal(t, sha256.Sum256([]byte("task image")), [DigestSize]byte(m.TaskHMAC))
}
