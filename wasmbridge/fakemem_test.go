package wasmbridge

import "fmt"

// fakeMemory is a flat byte slice standing in for a WASM instance's
// linear memory, for bridge-layer tests that never touch an actual
// WASM host.
type fakeMemory struct {
	buf []byte
}

func newFakeMemory(size int) *fakeMemory {
	return &fakeMemory{buf: make([]byte, size)}
}

func (m *fakeMemory) ReadAt(ptr, n uint32) ([]byte, error) {
	if int(ptr+n) > len(m.buf) {
		return nil, fmt.Errorf("out of range: %d+%d > %d", ptr, n, len(m.buf))
	}
	out := make([]byte, n)
	copy(out, m.buf[ptr:ptr+n])
	return out, nil
}

func (m *fakeMemory) WriteAt(ptr uint32, data []byte) error {
	if int(ptr)+len(data) > len(m.buf) {
		return fmt.Errorf("out of range: %d+%d > %d", ptr, len(data), len(m.buf))
	}
	copy(m.buf[ptr:], data)
	return nil
}

func (m *fakeMemory) putCString(ptr uint32, s string) {
	copy(m.buf[ptr:], s)
	m.buf[int(ptr)+len(s)] = 0
}
