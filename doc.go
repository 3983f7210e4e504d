// Package lexconv converts byte streams in external character encodings into
// streams of fixed-width code point values ("lexatoms"), incrementally.
//
// Neither the source nor the destination buffer has to hold the whole
// stream. A single logical conversion runs across any number of calls, each
// supplying a slice of source bytes and a slice of destination capacity, and
// produces the same output however the stream is chopped.
//
// # Architecture Overview
//
//	lexconv/             Root package with the linear Memory interfaces
//	├── codec/           Per-encoding decoding rules behind one contract
//	├── converter/       Residue bookkeeping and the Convert entry point
//	├── stream/          io.Reader and x/text transform adapters
//	├── engine/          wazero guest memory as source and destination
//	├── conformance/     Golden-fixture harness with call-chopping patterns
//	├── errors/          Structured error types for diagnostics
//	├── internal/ledger/ SQLite history of conformance reports
//	└── cmd/lexconv/     Command line front end
//
// # Quick Start
//
//	conv := converter.New[uint32](codec.UTF8)
//	dst := make([]uint32, 64)
//
//	nDst, nSrc, out, err := conv.Convert(dst, src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	switch out {
//	case converter.DestinationFull:
//	    // drain dst[:nDst], call again with src[nSrc:]
//	case converter.SourceExhausted:
//	    // supply more source bytes
//	case converter.Complete:
//	    // everything supplied so far has been converted
//	}
//
// At end of stream, conv.Finish() reports a truncated stream when a partial
// sequence is still pending.
//
// # Thread Safety
//
// Codecs are stateless and safe for concurrent use. A Converter belongs to
// exactly one stream and is NOT thread-safe; use one per goroutine.
package lexconv
