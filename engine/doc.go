// Package engine hosts conversion buffers in WebAssembly linear memory.
//
// The package wraps wazero to provide memory-only guest instances whose
// linear memory holds both the encoded source bytes and the lexatom
// destination. Convert drives a converter over byte ranges of such a memory
// using offset cursors:
//
//	src := &engine.Range{Offset: 0, End: 512}
//	dst := &engine.Range{Offset: 4096, End: 8192}
//	out, err := engine.Convert(conv, mem, src, dst)
//
// On return src.Offset and dst.Offset have moved forward by what the call
// consumed and produced. Lexatoms are stored little-endian, the byte order
// of WebAssembly memory.
//
// # Preconditions
//
// A cursor beyond its end, or a destination range overlapping the source
// range, is a programming error and panics. Ranges outside the memory are
// reported as out_of_bounds errors.
//
// # Thread Safety
//
// Engine is safe for concurrent use. A WazeroMemory is NOT thread-safe and
// should be used by a single goroutine.
package engine
