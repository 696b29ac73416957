package taskmeta

// Hash is the pluggable digest primitive: bytes in, fixed-size digest out.
// The codec only chooses the byte ranges hashed, never the algorithm.
type Hash func([]byte) [DigestSize]byte

// TaskDigest computes the task-content digest over the task image bytes.
func TaskDigest(content []byte, h Hash) [DigestSize]byte {
	return h(content)
}

// MetadataDigest computes the metadata digest over an encoded record with
// both digest fields treated as zero. The input record is not modified.
func MetadataDigest(record []byte, h Hash) ([DigestSize]byte, error) {
	var zero [DigestSize]byte
	if len(record) != Size {
		return zero, newFormatError(ErrCodeBadLength, "got %d bytes, want %d", len(record), Size)
	}
	scratch := make([]byte, Size)
	copy(scratch, record)
	for i := digestOffset; i < Size; i++ {
		scratch[i] = 0
	}
	return h(scratch), nil
}

// Seal computes and stores both digests: the task digest over the task
// content bytes, then the metadata digest over the record with digest fields
// zeroed. Any later field change invalidates the seal; callers must re-Seal.
func (m *Meta) Seal(taskContent []byte, h Hash) error {
	m.TaskHMAC = TaskDigest(taskContent, h)
	record, err := m.Encode()
	if err != nil {
		return err
	}
	digest, err := MetadataDigest(record, h)
	if err != nil {
		return err
	}
	m.MetadataHMAC = digest
	return nil
}
