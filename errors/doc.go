// Package errors provides structured error types for the lexconv library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the context needed to diagnose a failed conversion:
// the codec name, the stream offset of the offending sequence, the bytes found
// there, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindMalformed).
//		Codec("UTF8").
//		Offset(17).
//		Found([]byte{0xc3, 0x28}).
//		Detail("invalid continuation byte").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Malformed("UTF8", 17, []byte{0xc3, 0x28})
//	err := errors.Truncated("UTF16BE", 40, 1)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
