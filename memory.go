package lexconv

// Memory is a linear, byte-addressed memory holding source bytes and
// lexatom destinations, such as a WebAssembly guest memory.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
}

// MemorySizer provides the current size of a linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}
