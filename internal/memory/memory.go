package memory

import "fmt"

const (
	// Size is the amount of addressable memory, in bytes.
	Size = 4096
)

// RAM is a flat byte-addressable store. Addresses are not validated:
// reading or writing outside [0, Size) panics like any slice access.
type RAM struct {
	bytes []uint8
}

// New returns zero-initialized memory of Size bytes.
func New() *RAM {
	return &RAM{
		bytes: make([]uint8, Size),
	}
}

// Size returns the number of addressable bytes.
func (m *RAM) Size() int {
	return len(m.bytes)
}

func (m *RAM) Read(addr uint16) uint8 {
	return m.bytes[addr]
}

func (m *RAM) Write(addr uint16, value uint8) {
	m.bytes[addr] = value
}

// ReadSlice returns a view of the bytes in [start, end).
// The view aliases memory and is only valid until the next write.
func (m *RAM) ReadSlice(start, end uint16) []uint8 {
	return m.bytes[start:end]
}

// WriteSlice copies data into [start, end).
func (m *RAM) WriteSlice(start, end uint16, data []uint8) {
	if int(end-start) != len(data) {
		panic(fmt.Sprintf("memory: write of %d bytes into range [0x%04x, 0x%04x)", len(data), start, end))
	}

	copy(m.bytes[start:end], data)
}

// Clear zeroes every byte.
func (m *RAM) Clear() {
	for i := range m.bytes {
		m.bytes[i] = 0
	}
}
