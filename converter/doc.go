// Package converter implements the incremental conversion of an encoded
// byte stream into fixed-width code point values (lexatoms).
//
// A Converter owns the per-stream state: the codec chosen for the stream and
// the residue ("stomach") holding the bytes of a sequence that began before
// the end of the previous source slice but did not finish there. Callers
// hand it arbitrary slices of source and destination; the output is the same
// regardless of how the stream is chopped into calls.
//
// # Convert
//
//	nDst, nSrc, out, err := conv.Convert(dst, src)
//
// nSrc bytes of src were consumed (decoded into dst[:nDst] or moved into the
// residue) and nDst lexatoms were written. The outcome tells the caller what
// to do next:
//
//	Complete         all of src consumed, nothing pending
//	DestinationFull  drain dst[:nDst], call again with src[nSrc:]
//	SourceExhausted  src consumed into residue, supply more bytes
//
// # Residue state machine
//
//	EMPTY ──call ends mid-sequence──▶ PENDING(n)
//	PENDING(n) ──sequence completes──▶ EMPTY
//	PENDING(n) ──more dangling bytes──▶ PENDING(n+k)
//
// 0 < n < codec.MaxSequenceLength() at all times. A stream that ends in
// PENDING is truncated; Finish reports it.
//
// # Errors
//
// Malformed sequences and code points wider than the lexatom type stop the
// call with a structured error from the errors package. Neither the
// destination nor the residue is advanced past the offending sequence, so
// ResidueLen stays truthful. ClearResidue or Reset prepares the instance for
// an unrelated stream.
//
// Passing a destination that overlaps the source is a programming error and
// panics.
//
// # Thread Safety
//
// A Converter belongs to exactly one stream and is NOT safe for concurrent
// use.
package converter
