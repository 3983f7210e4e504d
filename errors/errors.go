package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConvert Phase = "convert" // buffer bookkeeping around a codec
	PhaseDecode  Phase = "decode"  // per-sequence codec semantics
	PhaseLoad    Phase = "load"    // fixture and file loading
	PhaseVerify  Phase = "verify"  // conformance checks
	PhaseRuntime Phase = "runtime" // guest memory operations
	PhaseConfig  Phase = "config"  // codec lookup and option validation
	PhaseStore   Phase = "store"   // report ledger
)

// Kind categorizes the error
type Kind string

const (
	KindMalformed    Kind = "malformed"
	KindTruncated    Kind = "truncated"
	KindOverflow     Kind = "overflow"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindUnsupported  Kind = "unsupported"
	KindNotFound     Kind = "not_found"
	KindMismatch     Kind = "mismatch"
	KindInvalidInput Kind = "invalid_input"
)

// NoOffset marks an error that is not tied to a stream position.
const NoOffset int64 = -1

// maxFound bounds the number of offending bytes kept for diagnostics.
const maxFound = 16

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Codec  string
	Detail string
	Found  []byte
	Offset int64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Codec != "" {
		b.WriteString(" in ")
		b.WriteString(e.Codec)
	}

	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.FormatInt(e.Offset, 10))
	}

	if len(e.Found) > 0 {
		b.WriteString(": found ")
		fmt.Fprintf(&b, "% x", e.Found)
	}

	if e.Detail != "" {
		if len(e.Found) > 0 {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: NoOffset,
		},
	}
}

// Codec sets the codec name
func (b *Builder) Codec(name string) *Builder {
	b.err.Codec = name
	return b
}

// Offset sets the stream offset of the offending sequence
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	return b
}

// Found records the offending bytes. The slice is copied.
func (b *Builder) Found(p []byte) *Builder {
	b.err.Found = clip(p)
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

func clip(p []byte) []byte {
	if len(p) > maxFound {
		p = p[:maxFound]
	}
	return append([]byte(nil), p...)
}

// Convenience constructors for common error patterns

// Malformed creates an error for a byte sequence that forms no code point
func Malformed(codec string, offset int64, found []byte) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindMalformed,
		Codec:  codec,
		Offset: offset,
		Found:  clip(found),
		Detail: "invalid sequence",
	}
}

// Truncated creates an error for a stream that ended inside a sequence
func Truncated(codec string, offset int64, pending int) *Error {
	return &Error{
		Phase:  PhaseConvert,
		Kind:   KindTruncated,
		Codec:  codec,
		Offset: offset,
		Detail: fmt.Sprintf("stream ended with %d byte(s) of an incomplete sequence", pending),
		Value:  pending,
	}
}

// Overflow creates an error for a code point that does not fit the lexatom width
func Overflow(codec string, offset int64, cp rune, bits int) *Error {
	return &Error{
		Phase:  PhaseConvert,
		Kind:   KindOverflow,
		Codec:  codec,
		Offset: offset,
		Detail: fmt.Sprintf("code point U+%04X does not fit a %d-bit lexatom", cp, bits),
		Value:  cp,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Offset: NoOffset,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset, length int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Offset: offset,
		Detail: fmt.Sprintf("offset %d out of bounds (length %d)", offset, length),
		Value:  offset,
	}
}

// NotFound creates an error for a missing named entity (codec, fixture file)
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Offset: NoOffset,
		Detail: what,
	}
}

// Mismatch creates an error for a value that differs from its expectation
func Mismatch(phase Phase, offset int64, want, got any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMismatch,
		Offset: offset,
		Detail: fmt.Sprintf("want %v, got %v", want, got),
		Value:  got,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: NoOffset,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}
