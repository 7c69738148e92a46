package wasmbridge

// Memory is the slice of a WASM instance's linear memory the bridge
// needs: byte-addressed reads and writes at an absolute offset. A host
// (e.g. a wazero api.Memory) satisfies this with thin adapter methods.
type Memory interface {
	// ReadAt returns a copy of n bytes starting at ptr, or an error if
	// the range falls outside the instance's memory.
	ReadAt(ptr, n uint32) ([]byte, error)
	// WriteAt copies data into memory starting at ptr, or errors if
	// the range falls outside the instance's memory.
	WriteAt(ptr uint32, data []byte) error
}

// ReadCString reads a NUL-terminated UTF-8 string starting at ptr.
func ReadCString(mem Memory, ptr uint32) (string, error) {
	const chunk = 256
	var out []byte
	for {
		buf, err := mem.ReadAt(ptr+uint32(len(out)), chunk)
		if err != nil {
			// A full chunk can run past the end of memory even when the
			// string ends before it; fall back to a single byte.
			buf, err = mem.ReadAt(ptr+uint32(len(out)), 1)
			if err != nil {
				return "", err
			}
		}
		if idx := indexZero(buf); idx >= 0 {
			out = append(out, buf[:idx]...)
			return string(out), nil
		}
		out = append(out, buf...)
	}
}

func indexZero(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}
