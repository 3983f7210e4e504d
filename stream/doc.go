// Package stream connects a converter to Go's I/O interfaces.
//
// Transformer adapts a converter to golang.org/x/text/transform so any
// supported encoding can be decoded to UTF-8 with transform.NewReader,
// transform.Bytes and friends. Reader pulls lexatoms out of an io.Reader,
// reading BlockSize bytes at a time and leaving partial sequences to the
// converter's residue.
package stream
