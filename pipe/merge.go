package pipe

// MergeReader concatenates a fixed, ordered list of Readers into one
// logical stream: it drains the first Reader to EOF before advancing to
// the next, regardless of how the underlying writers interleave in real
// time. Used for a node input bound to more than one dependency under
// the same logical slot name.
type MergeReader struct {
	readers []*Reader
	idx     int
}

// NewMergeReader creates a MergeReader over readers, consumed in order.
func NewMergeReader(readers []*Reader) *MergeReader {
	return &MergeReader{readers: readers}
}

// Read behaves like Reader.Read, transparently advancing to the next
// underlying reader on EOF until all are drained.
func (m *MergeReader) Read(size int) ([]byte, error) {
	for m.idx < len(m.readers) {
		data, err := m.readers[m.idx].Read(size)
		if err == nil {
			return data, nil
		}
		if IsEOF(err) {
			m.idx++
			continue
		}
		return nil, err
	}
	return nil, errEOF("merged")
}
